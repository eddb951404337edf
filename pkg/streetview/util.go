package streetview

// IsThirdPartyPanoid reports whether the ID belongs to a third-party
// (user-uploaded) panorama rather than an official car or trekker one.
// Official IDs are 22 characters, third-party IDs are longer.
func IsThirdPartyPanoid(panoid string) bool {
	return len(panoid) > 22
}

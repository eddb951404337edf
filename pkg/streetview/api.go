package streetview

import (
	"bytes"
	"fmt"
	"strings"
)

func splitIETF(tag string) (lang, country string) {
	parts := strings.SplitN(tag, "-", 2)
	if len(parts) > 1 {
		return parts[0], parts[1]
	}
	return parts[0], parts[0]
}

func buildCoverageTileURL(tileX, tileY int) string {
	return fmt.Sprintf(
		"https://www.google.com/maps/photometa/ac/v1?pb=!1m1!1smaps_sv.tactile!6m3!1i%d!2i%d!3i17!8b1",
		tileX, tileY)
}

func buildFindPanoramaURL(lat, lon float64, radius int, locale string, searchThirdParty bool) string {
	lang, country := splitIETF(locale)

	imageType := pbEnum(2)
	if searchThirdParty {
		imageType = pbEnum(10)
	}

	// resolution info, street name and date, copyright, neighbors and
	// historical panoramas
	toggles := []pbEnum{1, 2, 3, 4, 6, 8}

	msg := pbMessage{
		{1, pbMessage{
			{1, "apiv3"},
			{5, "US"},
			{11, pbMessage{{1, pbMessage{{1, false}}}}},
		}},
		{2, pbMessage{
			{1, pbMessage{{3, lat}, {4, lon}}},
			{2, float64(radius)},
		}},
		{3, pbMessage{
			{2, pbMessage{{1, lang}, {2, country}}},
			{9, pbMessage{{1, pbEnum(2)}}},
			{11, pbMessage{
				{1, pbMessage{{1, imageType}, {2, true}, {3, pbEnum(2)}}},
			}},
		}},
		{4, pbMessage{
			{1, toggles},
			{5, pbMessage{}},
			{6, pbMessage{}},
		}},
	}

	return "https://maps.googleapis.com/maps/api/js/GeoPhotoService.SingleImageSearch?pb=" +
		msg.encode() + "&callback=_xdc_._v2mub5"
}

func buildFindPanoramaByIDURL(panoid, locale string) string {
	lang, country := splitIETF(locale)

	panoType := pbEnum(2)
	if IsThirdPartyPanoid(panoid) {
		panoType = pbEnum(10)
	}

	// resolution info, street name and date, copyright, places,
	// neighbors and historical panoramas, street labels
	toggles := []pbEnum{1, 2, 3, 4, 5, 6, 8, 12}

	msg := pbMessage{
		{1, pbMessage{
			{1, "maps_sv.tactile"},
			{11, pbMessage{{2, pbMessage{{1, true}}}}},
		}},
		{2, pbMessage{{1, lang}, {2, country}}},
		{3, pbMessage{{1, pbMessage{{1, panoType}, {2, panoid}}}}},
		{4, pbMessage{
			{1, toggles},
			{2, pbMessage{{1, pbEnum(1)}}},
			{4, pbMessage{{1, 48}}},
			{5, []pbMessage{{}}},
			{6, []pbMessage{{}}},
			{9, pbMessage{
				{1, []pbMessage{
					{{1, pbEnum(2)}, {2, true}, {3, pbEnum(2)}},
					{{1, pbEnum(2)}, {2, false}, {3, pbEnum(3)}},
					{{1, pbEnum(3)}, {2, true}, {3, pbEnum(2)}},
					{{1, pbEnum(3)}, {2, false}, {3, pbEnum(3)}},
					{{1, pbEnum(8)}, {2, false}, {3, pbEnum(3)}},
					{{1, pbEnum(1)}, {2, false}, {3, pbEnum(3)}},
					{{1, pbEnum(4)}, {2, false}, {3, pbEnum(3)}},
					{{1, pbEnum(10)}, {2, true}, {3, pbEnum(2)}},
					{{1, pbEnum(10)}, {2, false}, {3, pbEnum(3)}},
				}},
			}},
		}},
	}

	return fmt.Sprintf("https://www.google.com/maps/photometa/v1?authuser=0&hl=%s&gl=%s&pb=%s",
		lang, country, msg.encode())
}

// stripXSSIPrefix removes the )]}' anti-XSSI line the photometa
// endpoints prepend to their JSON.
func stripXSSIPrefix(body []byte) []byte {
	if len(body) > 4 {
		return body[4:]
	}
	return body
}

// unwrapJSONP extracts the argument of the JSONP callback wrapper
// returned by SingleImageSearch and rewraps it as a JSON array.
func unwrapJSONP(body []byte) []byte {
	open := bytes.IndexByte(body, '(')
	close_ := bytes.LastIndexByte(body, ')')
	if open < 0 || close_ <= open {
		return body
	}
	out := make([]byte, 0, close_-open+1)
	out = append(out, '[')
	out = append(out, body[open+1:close_]...)
	out = append(out, ']')
	return out
}

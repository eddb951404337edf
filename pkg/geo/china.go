package geo

import "math"

// Conversions between the coordinate systems used by Chinese map
// providers. GCJ-02 is the obfuscated national system, BD09 is Baidu's
// additional offset on top of it, and BD09MC is Baidu's Mercator
// projection of BD09.
//
// The GCJ-02 offset model and the BD09MC band polynomials are the
// standard published ones; the inverses are iterative where no closed
// form exists.

const (
	krasovskyA  = 6378245.0
	krasovskyEE = 0.00669342162296594323

	xPi = math.Pi * 3000.0 / 180.0
)

var mcBand = [6]float64{12890594.86, 8362377.87, 5591021, 3481989.83, 1678043.12, 0}

var llBand = [6]float64{75, 60, 45, 30, 15, 0}

var mc2ll = [6][10]float64{
	{1.410526172116255e-8, 0.00000898305509648872, -1.9939833816331, 200.9824383106796, -187.2403703815547,
		91.6087516669843, -23.38765649603339, 2.57121317296198, -0.03801003308653, 17337981.2},
	{-7.435856389565537e-9, 0.000008983055097726239, -0.78625201886289, 96.32687599759846, -1.85204757529826,
		-59.36935905485877, 47.40033549296737, -16.50741931063887, 2.28786674699375, 10260144.86},
	{-3.030883460898826e-8, 0.00000898305509983578, 0.30071316287616, 59.74293618442277, 7.357984074871,
		-25.38371002664745, 13.45380521110908, -3.29883767235584, 0.32710905363475, 6856817.37},
	{-1.981981304930552e-8, 0.000008983055099779535, 0.03278182852591, 40.31678527705744, 0.65659298677277,
		-4.44255534477492, 0.85341911805263, 0.12923347998204, -0.04625736007561, 4482777.06},
	{3.09191371068437e-9, 0.000008983055096812155, 0.00006995724062, 23.10934304144901, -0.00023663490511,
		-0.6321817810242, -0.00663494467273, 0.03430082397953, -0.00466043876332, 2555164.4},
	{2.890871144776878e-9, 0.000008983055095805407, -3.068298e-8, 7.47137025468032, -0.00000353937994,
		-0.02145144861037, -0.00001234426596, 0.00010322952773, -0.00000323890364, 826088.5},
}

var ll2mc = [6][10]float64{
	{-0.0015702102444, 111320.7020616939, 1704480524535203, -10338987376042340, 26112667856603880,
		-35149669176653700, 26595700718403920, -10725012454188240, 1800819912950474, 82.5},
	{0.0008277824516172526, 111320.7020463578, 647795574.6671607, -4082003173.641316, 10774905663.51142,
		-15171875531.51559, 12053065338.62167, -5124939663.577472, 913311935.9512032, 67.5},
	{0.00337398766765, 111320.7020202162, 4481351.045890365, -23393751.19931662, 79682215.47186455,
		-115964993.2797253, 97236711.15602145, -43661946.33752821, 8477230.501135234, 52.5},
	{0.00220636496208, 111320.7020209128, 51751.86112841131, 3796837.749470245, 992013.7397791013,
		-1221952.21711287, 1340652.697009075, -620943.6990984312, 144416.9293806241, 37.5},
	{-0.0003441963504368392, 111320.7020576856, 278.2353980772752, 2485758.690035394, 6070.750963243378,
		54821.18345352118, 9540.606633304236, -2710.55326746645, 1405.483844121726, 22.45},
	{-0.0003218135878613132, 111320.7020701615, 0.00369383431289, 823725.6402795718, 0.46104986909093,
		2351.343141331292, 1.58060784298199, 8.77738589078284, 0.37238884252424, 7.45},
}

func outOfChina(lat, lon float64) bool {
	return lon < 72.004 || lon > 137.8347 || lat < 0.8293 || lat > 55.8271
}

func transformLat(x, y float64) float64 {
	ret := -100.0 + 2.0*x + 3.0*y + 0.2*y*y + 0.1*x*y + 0.2*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(y*math.Pi) + 40.0*math.Sin(y/3.0*math.Pi)) * 2.0 / 3.0
	ret += (160.0*math.Sin(y/12.0*math.Pi) + 320*math.Sin(y*math.Pi/30.0)) * 2.0 / 3.0
	return ret
}

func transformLon(x, y float64) float64 {
	ret := 300.0 + x + 2.0*y + 0.1*x*x + 0.1*x*y + 0.1*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(x*math.Pi) + 40.0*math.Sin(x/3.0*math.Pi)) * 2.0 / 3.0
	ret += (150.0*math.Sin(x/12.0*math.Pi) + 300.0*math.Sin(x/30.0*math.Pi)) * 2.0 / 3.0
	return ret
}

// Wgs84ToGcj02 converts WGS84 coordinates to GCJ-02.
func Wgs84ToGcj02(lat, lon float64) (float64, float64) {
	if outOfChina(lat, lon) {
		return lat, lon
	}
	dLat := transformLat(lon-105.0, lat-35.0)
	dLon := transformLon(lon-105.0, lat-35.0)
	radLat := lat / 180.0 * math.Pi
	magic := math.Sin(radLat)
	magic = 1 - krasovskyEE*magic*magic
	sqrtMagic := math.Sqrt(magic)
	dLat = (dLat * 180.0) / ((krasovskyA * (1 - krasovskyEE)) / (magic * sqrtMagic) * math.Pi)
	dLon = (dLon * 180.0) / (krasovskyA / sqrtMagic * math.Cos(radLat) * math.Pi)
	return lat + dLat, lon + dLon
}

// Gcj02ToWgs84 converts GCJ-02 coordinates to WGS84 by iterating the
// forward transform until the correction converges.
func Gcj02ToWgs84(lat, lon float64) (float64, float64) {
	wLat, wLon := lat, lon
	for i := 0; i < 10; i++ {
		gLat, gLon := Wgs84ToGcj02(wLat, wLon)
		dLat, dLon := gLat-lat, gLon-lon
		wLat -= dLat
		wLon -= dLon
		if math.Abs(dLat) < 1e-9 && math.Abs(dLon) < 1e-9 {
			break
		}
	}
	return wLat, wLon
}

// Gcj02ToBd09 converts GCJ-02 coordinates to BD09.
func Gcj02ToBd09(lat, lon float64) (float64, float64) {
	z := math.Sqrt(lon*lon+lat*lat) + 0.00002*math.Sin(lat*xPi)
	theta := math.Atan2(lat, lon) + 0.000003*math.Cos(lon*xPi)
	return z*math.Sin(theta) + 0.006, z*math.Cos(theta) + 0.0065
}

// Bd09ToGcj02 converts BD09 coordinates to GCJ-02.
func Bd09ToGcj02(lat, lon float64) (float64, float64) {
	x := lon - 0.0065
	y := lat - 0.006
	z := math.Sqrt(x*x+y*y) - 0.00002*math.Sin(y*xPi)
	theta := math.Atan2(y, x) - 0.000003*math.Cos(x*xPi)
	return z * math.Sin(theta), z * math.Cos(theta)
}

// Wgs84ToBd09 converts WGS84 coordinates to BD09.
func Wgs84ToBd09(lat, lon float64) (float64, float64) {
	return Gcj02ToBd09(Wgs84ToGcj02(lat, lon))
}

// Bd09ToWgs84 converts BD09 coordinates to WGS84.
func Bd09ToWgs84(lat, lon float64) (float64, float64) {
	return Gcj02ToWgs84(Bd09ToGcj02(lat, lon))
}

func bandConvert(x, y float64, table *[10]float64) (float64, float64) {
	cx := table[0] + table[1]*math.Abs(x)
	d := math.Abs(y) / table[9]
	cy := table[2] + d*(table[3]+d*(table[4]+d*(table[5]+d*(table[6]+d*(table[7]+d*table[8])))))
	return math.Copysign(cx, x), math.Copysign(cy, y)
}

// Bd09ToBd09mc converts BD09 coordinates to BD09 Mercator meters.
func Bd09ToBd09mc(lat, lon float64) (x, y float64) {
	lon = math.Mod(lon+180.0, 360.0) - 180.0
	lat = math.Max(-74, math.Min(74, lat))
	var table *[10]float64
	for i := range llBand {
		if lat >= llBand[i] {
			table = &ll2mc[i]
			break
		}
	}
	if table == nil {
		for i := len(llBand) - 1; i >= 0; i-- {
			if lat <= -llBand[i] {
				table = &ll2mc[i]
				break
			}
		}
	}
	return bandConvert(lon, lat, table)
}

// Bd09mcToBd09 converts BD09 Mercator meters to BD09 coordinates.
func Bd09mcToBd09(x, y float64) (lat, lon float64) {
	var table *[10]float64
	ay := math.Abs(y)
	for i := range mcBand {
		if ay >= mcBand[i] {
			table = &mc2ll[i]
			break
		}
	}
	lon, lat = bandConvert(x, y, table)
	return lat, lon
}

// Wgs84ToBd09mc converts WGS84 coordinates to BD09 Mercator meters.
func Wgs84ToBd09mc(lat, lon float64) (x, y float64) {
	return Bd09ToBd09mc(Wgs84ToBd09(lat, lon))
}

// Gcj02ToBd09mc converts GCJ-02 coordinates to BD09 Mercator meters.
func Gcj02ToBd09mc(lat, lon float64) (x, y float64) {
	return Bd09ToBd09mc(Gcj02ToBd09(lat, lon))
}

// Bd09mcToWgs84 converts BD09 Mercator meters to WGS84 coordinates.
func Bd09mcToWgs84(x, y float64) (lat, lon float64) {
	return Bd09ToWgs84(Bd09mcToBd09(x, y))
}

// Bd09mcToGcj02 converts BD09 Mercator meters to GCJ-02 coordinates.
func Bd09mcToGcj02(x, y float64) (lat, lon float64) {
	return Bd09ToGcj02(Bd09mcToBd09(x, y))
}

package geo

import "math"

// EarthRadius is the mean earth radius in meters.
// See https://en.wikipedia.org/wiki/Earth_radius#Mean_radius
const EarthRadius = 6371000.0

// NormalizeLongitude reduces lon into [-180, 180).
func NormalizeLongitude(lon float64) float64 {
	n := math.Mod(lon, 360) // -360..360
	if n < -180 {
		n += 360
	} else if n >= 180 {
		n -= 360
	}
	return n
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	return DistanceOnSphere(a, b, EarthRadius)
}

// DistanceOnSphere is Distance for a sphere of the given radius.
func DistanceOnSphere(a, b Point, radius float64) float64 {
	return angularDistance(
		toRadians(a.Latitude), toRadians(a.Longitude),
		toRadians(b.Latitude), toRadians(b.Longitude),
	) * radius
}

// EnclosingBoundingBox returns a box containing every point within radius meters
// of p: the square centered at p with side length 2*radius, spanned by its
// south-west and north-east corners.
func EnclosingBoundingBox(p Point, radius float64) BoundingBox {
	distance := math.Sqrt2 * radius
	return BoundingBox{
		Min: Translate(p, distance, 225),
		Max: Translate(p, distance, 45),
	}
}

// Translate returns the point reached from p after travelling distance meters
// along the initial bearing (degrees clockwise from north).
func Translate(p Point, distance, bearing float64) Point {
	lat, lon := destination(
		toRadians(p.Latitude),
		toRadians(p.Longitude),
		toRadians(bearing),
		distance/EarthRadius,
	)
	return translated(toDegrees(lat), toDegrees(lon))
}

// destination solves the direct geodesic problem on a sphere from φ1, λ1 with
// initial bearing α1 over the angular distance σ12.
func destination(φ1, λ1, α1, σ12 float64) (float64, float64) {
	y := math.Sin(φ1)*math.Cos(σ12) + math.Cos(φ1)*math.Sin(σ12)*math.Cos(α1)
	a := math.Cos(φ1)*math.Cos(σ12) - math.Sin(φ1)*math.Sin(σ12)*math.Cos(α1)
	b := math.Sin(σ12) * math.Sin(α1)
	x := math.Sqrt(a*a + b*b)
	φ2 := math.Atan2(y, x)
	λ2 := λ1 + math.Atan2(b, a)
	return φ2, λ2
}

// angularDistance is the haversine formula.
// See https://mathforum.org/library/drmath/view/51879.html
func angularDistance(φ1, λ1, φ2, λ2 float64) float64 {
	Δλ := λ2 - λ1
	Δφ := φ2 - φ1
	a := math.Pow(math.Sin(Δφ/2), 2) + math.Cos(φ1)*math.Cos(φ2)*math.Pow(math.Sin(Δλ/2), 2)
	return 2 * math.Asin(math.Min(1, math.Sqrt(a)))
}

// translated folds a latitude past a pole back into range, flipping the
// longitude by 180°, and wraps the longitude into [-180, 180).
func translated(lat, lon float64) Point {
	lon = NormalizeLongitude(lon)
	crossedPole := false
	if lat > 90 {
		lat = 180 - lat
		crossedPole = true
	} else if lat < -90 {
		lat = -180 - lat
		crossedPole = true
	}
	if crossedPole {
		lon = NormalizeLongitude(lon + 180)
	}
	return Point{Latitude: lat, Longitude: lon}
}

func toRadians(deg float64) float64 { return deg / 180 * math.Pi }
func toDegrees(rad float64) float64 { return rad / math.Pi * 180 }

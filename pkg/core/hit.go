package core

// Material describes the light reflectance properties at a hit point. The
// shading models live outside this module; the geometric core only attaches
// materials to hit records by reference and never inspects them.
type Material interface{}

// HitRecord contains information about a ray-surface intersection.
//
// A record is created fresh per query by the caller and filled in only on a
// successful hit; intersection routines must leave it untouched when they
// report a miss, so callers must not read any field after a failed query.
type HitRecord struct {
	T           float64  // Ray parameter at the hit
	Point       Vec3     // World-space hit position
	GeoNormal   Vec3     // Geometric normal, from the raw surface geometry
	ShadeNormal Vec3     // Shading normal, possibly interpolated
	UV          Vec2     // Texture coordinates
	Material    Material // Material at the hit point
}

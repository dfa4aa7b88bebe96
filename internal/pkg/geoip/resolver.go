package geoip

// Resolver defines the interface for GeoIP lookups.
type Resolver interface {
	Locate(ip string) (country, city string, err error)
}

// NoopResolver is used when no GeoIP database is configured. Scan events
// then carry only whatever the CDN geo headers provided.
type NoopResolver struct{}

func NewNoopResolver() *NoopResolver {
	return &NoopResolver{}
}

func (r *NoopResolver) Locate(ip string) (string, string, error) {
	return "", "", nil
}

package util

import (
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

// geoLocator resolves client IPs to "City/Country" strings for the security
// log. Lookups are cached because the same clients call repeatedly.
type geoLocator struct {
	mu     sync.RWMutex
	reader *geoip2.Reader
	cache  *cache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

var geo = &geoLocator{}

// InitGeoIP opens the GeoLite2/GeoIP2 city database at dbPath, falling back to
// GEOIP_DB_PATH. With no path configured it is a no-op and lookups return "".
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		dbPath = os.Getenv("GEOIP_DB_PATH")
	}
	if dbPath == "" {
		return nil
	}

	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}

	geo.mu.Lock()
	defer geo.mu.Unlock()
	if geo.reader != nil {
		_ = geo.reader.Close()
	}
	geo.reader = r
	geo.cache = cache.New(24*time.Hour, time.Hour)
	return nil
}

// CloseGeoIP closes the GeoIP DB if opened.
func CloseGeoIP() {
	geo.mu.Lock()
	defer geo.mu.Unlock()
	if geo.reader != nil {
		_ = geo.reader.Close()
		geo.reader = nil
	}
	geo.cache = nil
}

// GetIPLocation returns "City/Country", just the country or city when only one
// is known, or "" for private, invalid, or unresolvable addresses.
func GetIPLocation(ip string) string {
	addr := net.ParseIP(ip)
	if addr == nil || addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() || addr.IsLinkLocalUnicast() {
		return ""
	}

	geo.mu.RLock()
	defer geo.mu.RUnlock()

	if geo.cache != nil {
		if v, ok := geo.cache.Get(ip); ok {
			geo.hits.Add(1)
			return v.(string)
		}
	}
	geo.misses.Add(1)

	if geo.reader == nil {
		return ""
	}
	rec, err := geo.reader.City(addr)
	if err != nil {
		return ""
	}

	city := rec.City.Names["en"]
	country := rec.Country.Names["en"]
	if country == "" {
		country = rec.Country.IsoCode
	}
	loc := joinLocation(city, country)
	geo.cache.Set(ip, loc, cache.DefaultExpiration)
	return loc
}

func joinLocation(city, country string) string {
	switch {
	case city != "" && country != "":
		return city + "/" + country
	case country != "":
		return country
	}
	return city
}

// GetGeoIPCacheMetrics returns the cache hits and misses and current cache size.
func GetGeoIPCacheMetrics() (hits int64, misses int64, size int) {
	geo.mu.RLock()
	defer geo.mu.RUnlock()
	hits, misses = geo.hits.Load(), geo.misses.Load()
	if geo.cache != nil {
		size = geo.cache.ItemCount()
	}
	return hits, misses, size
}

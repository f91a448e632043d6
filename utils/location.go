package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// ParseLocation interprets a submitted location field value as a geographic
// point. Two shapes are accepted: the "lat,lng" string the capture widget
// writes, and a {lat, lng} object from decoded JSON. The returned point is
// orb-ordered (X=lng, Y=lat).
func ParseLocation(value interface{}) (orb.Point, error) {
	switch v := value.(type) {
	case string:
		return parseLatLngString(v)
	case map[string]interface{}:
		lat, latOK := floatField(v, "lat")
		lng, lngOK := floatField(v, "lng")
		if !latOK || !lngOK {
			return orb.Point{}, errors.New("location object needs numeric lat and lng")
		}
		return newPoint(lat, lng)
	}
	return orb.Point{}, fmt.Errorf("unsupported location value %T", value)
}

func parseLatLngString(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, errors.New(`location string must be "lat,lng"`)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid longitude: %w", err)
	}
	return newPoint(lat, lng)
}

func newPoint(lat, lng float64) (orb.Point, error) {
	if lat < -90 || lat > 90 {
		return orb.Point{}, fmt.Errorf("latitude %.6f is out of valid range [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return orb.Point{}, fmt.Errorf("longitude %.6f is out of valid range [-180, 180]", lng)
	}
	return orb.Point{lng, lat}, nil
}

func floatField(m map[string]interface{}, key string) (float64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := raw.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

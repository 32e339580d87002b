package requests

import "github.com/busnet/transitcat/internal/geo"

func geoPoint(lat, lng float64) geo.Coordinates {
	return geo.Coordinates{Lat: lat, Lng: lng}
}

package services

import (
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/types"
)

// AreaPayload is the type-specific part of a market area. Each variant
// declares the payload it requires and clears the columns it does not own.
type AreaPayload interface {
	Type() string
	Validate() map[string]string
	Apply(area *models.MarketArea)
}

// RadiusPayload describes rings around points, optionally with drive time polygons
type RadiusPayload struct {
	RadiusPoints    models.JSON
	DriveTimePoints models.JSON
}

func (RadiusPayload) Type() string { return "radius" }

func (p RadiusPayload) Validate() map[string]string {
	if p.RadiusPoints.IsEmpty() {
		return map[string]string{"radius_points": "Radius points are required for radius type market areas"}
	}
	return nil
}

func (p RadiusPayload) Apply(area *models.MarketArea) {
	area.MAType = p.Type()
	area.RadiusPoints = p.RadiusPoints
	area.DriveTimePoints = p.DriveTimePoints
	area.Locations = models.JSON{}
	area.SiteLocationData = models.JSON{}
}

// SiteLocationPayload is a set of locations around a subject site.
// Site location data is optional; only the locations are required.
type SiteLocationPayload struct {
	Locations        models.JSON
	SiteLocationData models.JSON
}

func (SiteLocationPayload) Type() string { return "site_location" }

func (p SiteLocationPayload) Validate() map[string]string {
	if p.Locations.IsEmpty() {
		return map[string]string{"locations": "Locations are required for non-radius type market areas"}
	}
	return nil
}

func (p SiteLocationPayload) Apply(area *models.MarketArea) {
	area.MAType = p.Type()
	area.Locations = p.Locations
	area.SiteLocationData = p.SiteLocationData
	area.RadiusPoints = models.JSON{}
	area.DriveTimePoints = models.JSON{}
}

// LocationSetPayload is a set of geographic units of one type (zip, county, ...)
type LocationSetPayload struct {
	AreaType  string
	Locations models.JSON
}

func (p LocationSetPayload) Type() string { return p.AreaType }

func (p LocationSetPayload) Validate() map[string]string {
	if p.Locations.IsEmpty() {
		return map[string]string{"locations": "Locations are required for non-radius type market areas"}
	}
	return nil
}

func (p LocationSetPayload) Apply(area *models.MarketArea) {
	area.MAType = p.Type()
	area.Locations = p.Locations
	area.RadiusPoints = models.JSON{}
	area.DriveTimePoints = models.JSON{}
	area.SiteLocationData = models.JSON{}
}

// NewAreaPayload selects the variant for maType from the submitted columns
func NewAreaPayload(maType string, locations, radiusPoints, driveTimePoints, siteLocationData models.JSON) (AreaPayload, error) {
	var payload AreaPayload
	switch {
	case maType == "radius":
		payload = RadiusPayload{RadiusPoints: radiusPoints, DriveTimePoints: driveTimePoints}
	case maType == "site_location":
		payload = SiteLocationPayload{Locations: locations, SiteLocationData: siteLocationData}
	case models.IsAreaType(maType):
		payload = LocationSetPayload{AreaType: maType, Locations: locations}
	default:
		return nil, types.FieldError("ma_type", "unknown market area type: "+maType)
	}
	if fields := payload.Validate(); fields != nil {
		return nil, types.Validation("validation failed", fields)
	}
	return payload, nil
}

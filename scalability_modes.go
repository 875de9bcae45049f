package sfu

import (
	"regexp"
	"strconv"
)

// scalabilityModeRegex matches the SVC scalability mode strings a Producer's
// encoding parameters may carry, e.g. "L1T3" or "S2T3_KEY". The leading
// letter picks simulcast-style spatial layers ("S", independently decodable)
// vs layered spatial layers with inter-layer prediction ("L"); both carry
// a spatial and a temporal layer count. "_KEY" marks a K-SVC mode, where only keyframes carry
// inter-layer dependencies.
var scalabilityModeRegex = regexp.MustCompile(`^[LS]([1-9]\d{0,1})T([1-9]\d{0,1})(_KEY)?`)

// ScalabilityMode is the decoded form of an encoding's "scalabilityMode"
// string, used by Consumer layer selection (§4.5) to know how many spatial/
// temporal layers a Producer stream offers.
type ScalabilityMode struct {
	SpatialLayers  int  `json:"spatialLayers,omitempty"`
	TemporalLayers int  `json:"temporalLayers,omitempty"`
	Ksvc           bool `json:"ksvc,omitempty"`
}

// ParseScalabilityMode decodes mode, falling back to a single spatial and
// temporal layer (no SVC) if mode is empty or doesn't match the expected
// shape, matching how a Producer's encoding is treated when it omits
// "scalabilityMode" entirely.
func ParseScalabilityMode(mode string) ScalabilityMode {
	match := scalabilityModeRegex.FindStringSubmatch(mode)
	if len(match) != 4 {
		return ScalabilityMode{SpatialLayers: 1, TemporalLayers: 1}
	}

	spatialLayers, _ := strconv.Atoi(match[1])
	temporalLayers, _ := strconv.Atoi(match[2])

	return ScalabilityMode{
		SpatialLayers:  spatialLayers,
		TemporalLayers: temporalLayers,
		Ksvc:           match[3] != "",
	}
}

// TotalLayers returns the number of distinct (spatial, temporal) layer
// combinations this mode describes.
func (m ScalabilityMode) TotalLayers() int {
	return m.SpatialLayers * m.TemporalLayers
}

package sfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayerSelector_NoSwitchWithoutKeyframe(t *testing.T) {
	var l layerSelector
	l.RequestSwitch(&ConsumerLayers{SpatialLayer: 1})
	assert.Nil(t, l.MaybeSwitchAtKeyframe(1, false))
	assert.Nil(t, l.Current())
}

func TestLayerSelector_SwitchesOnlyOnMatchingLayerKeyframe(t *testing.T) {
	var l layerSelector
	l.RequestSwitch(&ConsumerLayers{SpatialLayer: 1})

	assert.Nil(t, l.MaybeSwitchAtKeyframe(0, true), "keyframe on the wrong layer must not switch")
	assert.Nil(t, l.Current())

	switched := l.MaybeSwitchAtKeyframe(1, true)
	assert.NotNil(t, switched)
	assert.Equal(t, 1, l.Current().SpatialLayer)
}

func TestLayerSelector_SetPreferredAlsoArmsPending(t *testing.T) {
	var l layerSelector
	l.SetPreferred(&ConsumerLayers{SpatialLayer: 2})
	assert.Equal(t, 2, l.Preferred().SpatialLayer)
	assert.NotNil(t, l.MaybeSwitchAtKeyframe(2, true))
}

func TestLayerSelector_RequestSwitchReportsSwitchingUp(t *testing.T) {
	var l layerSelector
	l.RequestSwitch(&ConsumerLayers{SpatialLayer: 0})
	assert.NotNil(t, l.MaybeSwitchAtKeyframe(0, true))
	assert.Equal(t, 0, l.Current().SpatialLayer)

	assert.True(t, l.RequestSwitch(&ConsumerLayers{SpatialLayer: 2}), "raising the target layer must report switching up")
	assert.False(t, l.RequestSwitch(&ConsumerLayers{SpatialLayer: 0}), "lowering the target layer is not switching up")
}

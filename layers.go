package sfu

// layerSelector tracks the requested and currently-forwarded spatial/temporal
// layer of a Simulcast or SVC consumer. A layer switch only takes effect at
// the next keyframe boundary: dropping to a lower layer mid-GOP would leave
// the decoder with references to frames it never received.
type layerSelector struct {
	preferred *ConsumerLayers
	current   *ConsumerLayers
	pending   *ConsumerLayers
}

// SetPreferred records the endpoint's requested layers. It does not switch
// immediately; the request stays pending until MaybeSwitchAtKeyframe sees a
// keyframe on the requested spatial layer. Score and bandwidth changes do
// not alter the selection. It reports whether this request raises the spatial layer above what is
// currently being forwarded, since switching up needs a fresh keyframe on the
// target layer before MaybeSwitchAtKeyframe will apply it.
func (l *layerSelector) SetPreferred(layers *ConsumerLayers) bool {
	l.preferred = layers
	l.pending = layers
	return l.switchingUp(layers)
}

// RequestSwitch asks for a layer change to take effect at the next keyframe,
// reporting whether it raises the spatial layer above the one currently
// being forwarded.
func (l *layerSelector) RequestSwitch(layers *ConsumerLayers) bool {
	l.pending = layers
	return l.switchingUp(layers)
}

// switchingUp reports whether layers names a higher spatial layer than the
// one currently being forwarded.
func (l *layerSelector) switchingUp(layers *ConsumerLayers) bool {
	if layers == nil {
		return false
	}
	return l.current == nil || layers.SpatialLayer > l.current.SpatialLayer
}

// MaybeSwitchAtKeyframe applies a pending layer change when a keyframe
// arrives on the requested spatial layer, returning the new current layers
// if a switch happened, or nil if nothing changed.
func (l *layerSelector) MaybeSwitchAtKeyframe(spatialLayer int, isKeyFrame bool) *ConsumerLayers {
	if l.pending == nil || !isKeyFrame {
		return nil
	}
	if l.pending.SpatialLayer != spatialLayer {
		return nil
	}
	l.current = l.pending
	l.pending = nil
	return l.current
}

// Current returns the layers presently being forwarded.
func (l *layerSelector) Current() *ConsumerLayers {
	return l.current
}

// Preferred returns the endpoint's last requested layers.
func (l *layerSelector) Preferred() *ConsumerLayers {
	return l.preferred
}

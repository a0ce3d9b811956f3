package pipeline

import (
	"sort"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/interaction"
)

// candidate is a detected hand converted to screen space, before it has
// been assigned to a side.
type candidate struct {
	label interaction.Handedness
	score float64
	hand  gesture.Hand
}

// assign converts the frame's hands and decides which is left and which is
// right. At most two hands are kept, the highest scoring ones. When labels
// are missing or clash, the pairing that moves the pointers least since
// their last frames wins; with no history the higher scoring hand keeps its
// label.
func (p *Pipeline) assign(frames []detector.HandFrame) map[interaction.Handedness]gesture.Hand {
	if len(frames) == 0 {
		return nil
	}

	cands := make([]candidate, 0, len(frames))
	for i := range frames {
		f := &frames[i]
		cands = append(cands, candidate{
			label: p.label(f),
			score: f.Score,
			hand:  p.toHand(f),
		})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})
	if len(cands) > len(interaction.Hands) {
		cands = cands[:len(interaction.Hands)]
	}

	out := make(map[interaction.Handedness]gesture.Hand, len(cands))
	if len(cands) == 1 {
		c := cands[0]
		if c.label == "" {
			c.label = p.nearest(c.hand)
		}
		out[c.label] = c.hand
		return out
	}

	first, second := cands[0], cands[1]
	if first.label != "" && second.label != "" && first.label != second.label {
		out[first.label] = first.hand
		out[second.label] = second.hand
		return out
	}

	// Labels are missing or clash.
	side := first.label
	if p.hasHistory() {
		side = interaction.Right
		if p.cost(interaction.Left, first.hand)+p.cost(interaction.Right, second.hand) <
			p.cost(interaction.Right, first.hand)+p.cost(interaction.Left, second.hand) {
			side = interaction.Left
		}
	} else if side == "" {
		side = second.label.Opposite()
		if second.label == "" {
			side = interaction.Right
		}
	}
	out[side] = first.hand
	out[side.Opposite()] = second.hand
	return out
}

func (p *Pipeline) label(f *detector.HandFrame) interaction.Handedness {
	var h interaction.Handedness
	switch f.Label() {
	case "left":
		h = interaction.Left
	case "right":
		h = interaction.Right
	default:
		return ""
	}
	if p.config.SwapHandedness {
		h = h.Opposite()
	}
	return h
}

// nearest returns the side whose last pointer is closest to hand,
// preferring right when there is no history.
func (p *Pipeline) nearest(hand gesture.Hand) interaction.Handedness {
	if _, ok := p.tracker.LastPointer(interaction.Left); !ok {
		return interaction.Right
	}
	if _, ok := p.tracker.LastPointer(interaction.Right); !ok {
		return interaction.Left
	}
	if p.cost(interaction.Left, hand) < p.cost(interaction.Right, hand) {
		return interaction.Left
	}
	return interaction.Right
}

// cost is the distance from a side's last pointer to the hand's pointer.
// A side without history costs nothing.
func (p *Pipeline) cost(h interaction.Handedness, hand gesture.Hand) float64 {
	last, ok := p.tracker.LastPointer(h)
	if !ok {
		return 0
	}
	return geometry.Distance(last, hand.Pointer.Client())
}

func (p *Pipeline) hasHistory() bool {
	for _, h := range interaction.Hands {
		if _, ok := p.tracker.LastPointer(h); ok {
			return true
		}
	}
	return false
}

// toHand maps a hand's landmarks to the screen and picks its one category.
func (p *Pipeline) toHand(f *detector.HandFrame) gesture.Hand {
	tip := f.Points[detector.IndexTip]
	canvas, client := geometry.Normalize(tip.X, tip.Y, p.config.Canvas, p.config.ClientRect)

	tips := make([]geometry.Point, 0, len(detector.Fingertips))
	for _, i := range detector.Fingertips {
		_, c := geometry.Normalize(f.Points[i].X, f.Points[i].Y, p.config.Canvas, p.config.ClientRect)
		tips = append(tips, c)
	}

	return gesture.Hand{
		Present:    true,
		Pointer:    interaction.NewPoint(canvas, client),
		Fingertips: tips,
		Category:   p.category(f),
	}
}

func (p *Pipeline) category(f *detector.HandFrame) string {
	if top, ok := f.TopGesture(p.config.MinGestureScore); ok {
		return top.Name
	}
	if len(f.Gestures) == 0 && p.classifier != nil {
		if name, ok := p.classifier.Classify(f); ok {
			return name
		}
	}
	return gesture.CategoryNone
}

package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func templateFor(id, name string, hand detector.HandFrame, tolerance float64) *Template {
	return &Template{
		ID:        id,
		Name:      name,
		Landmarks: hand.Normalize().Points[:],
		Tolerance: tolerance,
	}
}

func TestStaticMatcher_Match(t *testing.T) {
	matcher := NewStaticMatcher()
	matcher.AddTemplate(templateFor("thumbs-up", "Thumb_Up", detector.ThumbsUpLandmarks(), 0.5))

	input := detector.ThumbsUpLandmarks()
	matches := matcher.Match(&input)

	if len(matches) == 0 {
		t.Fatal("expected at least one match for thumbs up input")
	}
	if matches[0].Template.ID != "thumbs-up" {
		t.Errorf("expected match for 'thumbs-up' template, got %q", matches[0].Template.ID)
	}

	// The score should be high (close to 1.0) for identical gesture
	if matches[0].Score < 0.9 {
		t.Errorf("expected high score (>0.9) for matching gesture, got %f", matches[0].Score)
	}
	if matches[0].Distance > 0.1 {
		t.Errorf("expected low distance (<0.1) for matching gesture, got %f", matches[0].Distance)
	}
}

func TestStaticMatcher_NoMatch(t *testing.T) {
	matcher := NewStaticMatcher()
	matcher.AddTemplate(templateFor("thumbs-up", "Thumb_Up", detector.ThumbsUpLandmarks(), 0.3))

	input := detector.OpenPalmLandmarks()
	for _, match := range matcher.Match(&input) {
		if match.Score > 0.5 {
			t.Errorf("expected low score (<0.5) for non-matching gesture, got %f", match.Score)
		}
	}
}

func TestStaticMatcher_AddRemoveTemplate(t *testing.T) {
	matcher := NewStaticMatcher()

	matcher.AddTemplate(templateFor("template-1", "A", detector.ThumbsUpLandmarks(), 0.5))
	matcher.AddTemplate(templateFor("template-2", "B", detector.OpenPalmLandmarks(), 0.5))
	matcher.AddTemplate(nil)

	if matcher.Len() != 2 {
		t.Errorf("expected 2 templates, got %d", matcher.Len())
	}

	// Same ID replaces
	matcher.AddTemplate(templateFor("template-2", "C", detector.OpenPalmLandmarks(), 0.5))
	if matcher.Len() != 2 {
		t.Errorf("expected replacement to keep 2 templates, got %d", matcher.Len())
	}

	matcher.RemoveTemplate("template-1")
	if matcher.Len() != 1 {
		t.Errorf("expected 1 template after removal, got %d", matcher.Len())
	}
	if matcher.templates[0].Name != "C" {
		t.Errorf("expected remaining template to be 'C', got %q", matcher.templates[0].Name)
	}

	matcher.RemoveTemplate("missing")
	if matcher.Len() != 1 {
		t.Errorf("expected removing a missing template to be a no-op, got %d", matcher.Len())
	}

	matcher.SetTemplates([]*Template{
		templateFor("template-3", "D", detector.ThumbsUpLandmarks(), 0.5),
		nil,
	})
	if matcher.Len() != 1 || matcher.templates[0].ID != "template-3" {
		t.Errorf("expected SetTemplates to replace everything, got %d templates", matcher.Len())
	}
}

func TestStaticMatcher_Classify(t *testing.T) {
	matcher := NewStaticMatcher()
	matcher.AddTemplate(templateFor("palm", "Open_Palm", detector.OpenPalmLandmarks(), 0.5))
	matcher.AddTemplate(templateFor("thumb", "Thumb_Up", detector.ThumbsUpLandmarks(), 0.5))

	t.Run("names the closest template", func(t *testing.T) {
		hand := detector.PlaceIndexTip(detector.OpenPalmLandmarks(), 0.3, 0.3)
		name, ok := matcher.Classify(&hand)
		if !ok {
			t.Fatal("expected a classification")
		}
		if name != "Open_Palm" {
			t.Errorf("expected Open_Palm, got %s", name)
		}
	})

	t.Run("no templates", func(t *testing.T) {
		empty := NewStaticMatcher()
		hand := detector.OpenPalmLandmarks()
		if _, ok := empty.Classify(&hand); ok {
			t.Error("expected no classification without templates")
		}
	})
}

func TestStaticMatcher_NilInput(t *testing.T) {
	matcher := NewStaticMatcher()
	matcher.AddTemplate(templateFor("palm", "Open_Palm", detector.OpenPalmLandmarks(), 0.5))

	if matches := matcher.Match(nil); matches != nil {
		t.Errorf("expected nil matches for nil input, got %v", matches)
	}
}

func TestEuclideanDistance(t *testing.T) {
	a := []detector.Point3D{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	b := []detector.Point3D{{X: 3, Y: 4, Z: 0}, {X: 1, Y: 0, Z: 0}}

	if d := euclideanDistance(a, b); !floatEqual(d, 5) {
		t.Errorf("expected distance 5, got %f", d)
	}

	if d := euclideanDistance(nil, b); !math.IsInf(d, 1) {
		t.Errorf("expected infinite distance for empty input, got %f", d)
	}
}

package taxonomy

import (
	"iter"
	"slices"

	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/logger"
)

// Taxonomy selects one of the two BigEarthNet nomenclatures.
type Taxonomy int

const (
	New19 Taxonomy = iota
	Old43
)

func (t Taxonomy) String() string {
	if t == Old43 {
		return "43-class"
	}
	return "19-class"
}

// Labels returns the ordered vocabulary of the taxonomy.
func (t Taxonomy) Labels(lexSorted bool) []string {
	if t == Old43 {
		return OldLabels(lexSorted)
	}
	return NewLabels(lexSorted)
}

// Size returns the vector length of the taxonomy.
func (t Taxonomy) Size() int {
	if t == Old43 {
		return len(oldOriginalOrder)
	}
	return len(newOriginalOrder)
}

func (t Taxonomy) ordering(lexSorted bool) []string {
	switch {
	case t == Old43 && lexSorted:
		return oldLexOrder
	case t == Old43:
		return oldOriginalOrder
	case lexSorted:
		return newLexOrder
	default:
		return newOriginalOrder
	}
}

func getLogger() logger.Logger {
	return logger.Global().Module("taxonomy")
}

// ToMultiHot encodes labels as a vector of 0/1 values indexed by the position
// of each label in the chosen ordering. Repeated labels set the same index.
// Note that every position is kept even when a subset of the archive never
// uses some labels ("Agro-forestry areas" only occurs in Portugal).
func ToMultiHot(labels iter.Seq[string], tax Taxonomy, lexSorted bool) ([]float64, error) {
	order := tax.ordering(lexSorted)
	vec := make([]float64, len(order))
	for label := range labels {
		idx := slices.Index(order, label)
		if idx < 0 {
			return nil, unknownLabel(label, tax)
		}
		vec[idx] = 1
	}
	return vec, nil
}

// MultiHot19 encodes 19-class labels.
func MultiHot19(labels []string, lexSorted bool) ([]float64, error) {
	return ToMultiHot(slices.Values(labels), New19, lexSorted)
}

// MultiHot43 encodes original 43-class labels.
func MultiHot43(labels []string, lexSorted bool) ([]float64, error) {
	return ToMultiHot(slices.Values(labels), Old43, lexSorted)
}

// OldToNew converts original labels to the 19-class nomenclature, dropping
// removed labels. When a non-empty input only holds removed labels the patch
// has no 19-class target: ok is false, the result nil and a warning logged.
// Unknown labels are an error.
func OldToNew(labels []string) (newLabels []string, ok bool, err error) {
	newLabels = make([]string, 0, len(labels))
	for _, label := range labels {
		n, kept, err := OldToNewLabel(label)
		if err != nil {
			return nil, false, err
		}
		if kept {
			newLabels = append(newLabels, n)
		}
	}

	if len(labels) > 0 && len(newLabels) == 0 {
		getLogger().Warn("labels contain only removed classes, no 19-class target",
			logger.Strings("labels", labels))
		return nil, false, nil
	}
	return newLabels, true, nil
}

func unknownLabel(label string, tax Taxonomy) error {
	return errors.Newf("unknown %s label %q", tax, label).
		Component("taxonomy").
		Category(errors.CategoryNotFound).
		Context("label", label).
		Context("taxonomy", tax.String()).
		Build()
}

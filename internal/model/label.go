package model

// LabelOrigin identifies which catalog a matching label came from.
type LabelOrigin string

// Label origins.
const (
	OriginCategory   LabelOrigin = "category"
	OriginCorrection LabelOrigin = "correction"
)

// Label is an ephemeral matching candidate: a unified view over a Category
// or a UserCorrection. Each label carries its own origin and resulting
// fields, so the winner of a matching pass never has to be resolved back
// to a source catalog by position.
type Label struct {
	Text           string
	Category       string
	DestinationAcc string
	Origin         LabelOrigin
}

// BuildLabels assembles the ordered label catalog for one matching pass:
// all category labels first, in catalog order, followed by all correction
// labels, in catalog order.
func BuildLabels(categories []Category, corrections []UserCorrection) []Label {
	labels := make([]Label, 0, len(categories)+len(corrections))
	for _, c := range categories {
		labels = append(labels, Label{
			Text:           c.Key,
			Category:       c.Category,
			DestinationAcc: c.DestinationAcc,
			Origin:         OriginCategory,
		})
	}
	for _, uc := range corrections {
		labels = append(labels, Label{
			Text:           uc.Description,
			Category:       uc.Category,
			DestinationAcc: uc.DestinationAcc,
			Origin:         OriginCorrection,
		})
	}
	return labels
}

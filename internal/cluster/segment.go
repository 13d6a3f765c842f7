package cluster

import (
	"fmt"

	"customer-segmentation/internal/customer"
	"customer-segmentation/internal/features"
)

// Segment standardizes the RFM features of table, fits km and returns a
// copy of table with Segment set on every record.
func Segment(table *customer.Table, km KMeans) (*customer.Table, *Model, error) {
	if table.Len() < km.K {
		return nil, nil, fmt.Errorf("%w: %d customers after cleaning, need at least %d",
			customer.ErrInsufficientData, table.Len(), km.K)
	}

	scaled, _, err := Standardize(features.Matrix(table), features.Names)
	if err != nil {
		return nil, nil, err
	}

	model, err := km.Fit(scaled)
	if err != nil {
		return nil, nil, err
	}

	out := table.Clone()
	for i := range out.Records {
		out.Records[i].Segment = model.Labels[i]
	}
	return out, model, nil
}

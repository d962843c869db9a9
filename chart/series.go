package chart

import (
	"sort"

	"github.com/benoitkugler/okchart/svgdraw"
	"github.com/benoitkugler/okchart/svgpath"
)

// badge geometry, relative to the last point of a curve
const (
	badgeOffsetX    = 5
	mainBadgeLift   = 20
	otherBadgeLift  = 15
	mainBadgeSize   = 40
	otherBadgeSize  = 20
	mainCurveClass  = "line main-competitor"
	otherCurveClass = "line other-competitor"
	mainLogoClass   = "logo main-competitor"
	otherLogoClass  = "logo other-competitor"
)

// EntityGroup is the sequence of records of one entity,
// in input order.
type EntityGroup struct {
	EntityID string
	IsMain   bool
	Records  []Record
}

// Last returns the terminal record of the group.
func (g EntityGroup) Last() Record { return g.Records[len(g.Records)-1] }

// GroupRecords partitions the records by entity, ordering the groups by
// first appearance. Entities are compared with exact string equality,
// and a group is the main one if its entity is exactly `mainEntityID`.
func GroupRecords(records []Record, mainEntityID string) []EntityGroup {
	var groups []EntityGroup
	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.EntityID]
		if !ok {
			i = len(groups)
			index[r.EntityID] = i
			groups = append(groups, EntityGroup{EntityID: r.EntityID, IsMain: r.EntityID == mainEntityID})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// SortByDate returns a copy of the group with its records
// sorted chronologically. Records with the same date (or invalid dates)
// keep their input order.
func (g EntityGroup) SortByDate() EntityGroup {
	type dated struct {
		r   Record
		key float64
	}
	tmp := make([]dated, len(g.Records))
	for i, r := range g.Records {
		key := 0.
		if t, err := ParseDate(r.Date); err == nil {
			key = timeValue(t)
		}
		tmp[i] = dated{r, key}
	}
	sort.SliceStable(tmp, func(i, j int) bool { return tmp[i].key < tmp[j].key })
	out := g
	out.Records = make([]Record, len(tmp))
	for i, d := range tmp {
		out.Records[i] = d.r
	}
	return out
}

// Duplicates returns the number of records sharing their date
// with a previous record of the group.
func (g EntityGroup) Duplicates() int {
	seen := make(map[string]bool, len(g.Records))
	n := 0
	for _, r := range g.Records {
		if seen[r.Date] {
			n++
		}
		seen[r.Date] = true
	}
	return n
}

// RenderSeries returns, for each group, a smoothed curve through its
// points followed by the logo badge anchored at its last record.
func RenderSeries(groups []EntityGroup, style StyleConfig, scales Scales) []svgdraw.Element {
	out := make([]svgdraw.Element, 0, 2*len(groups))
	for _, group := range groups {
		if len(group.Records) == 0 {
			continue
		}
		points := make([]svgpath.Point, len(group.Records))
		for i, r := range group.Records {
			points[i] = svgpath.Point{X: scales.X.ApplyDate(r.Date), Y: scales.Y.Apply(r.Metric)}
		}

		curve := &svgdraw.Curve{
			Path:        svgpath.CatmullRomPath(points),
			Class:       otherCurveClass,
			Stroke:      style.OtherColor,
			StrokeWidth: style.OtherStrokeWidth,
		}
		lift, size, logoClass := float64(otherBadgeLift), float64(otherBadgeSize), otherLogoClass
		if group.IsMain {
			curve.Class = mainCurveClass
			curve.Stroke = style.MainColor
			curve.StrokeWidth = style.MainStrokeWidth
			lift, size, logoClass = mainBadgeLift, mainBadgeSize, mainLogoClass
		}

		last, lastPoint := group.Last(), points[len(points)-1]
		logo := &svgdraw.Image{
			Class:  logoClass,
			Href:   last.LogoURL,
			X:      lastPoint.X + badgeOffsetX,
			Y:      lastPoint.Y - lift,
			Width:  size,
			Height: size,
		}
		out = append(out, curve, logo)
	}
	return out
}

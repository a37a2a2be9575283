package stats

import (
	"github.com/shopspring/decimal"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

// Lowest rating of each upper TNPS segment. Everything below passiveMin
// is a detractor.
const (
	promoterMin = 9
	passiveMin  = 7
)

// Rounding places for percentages and the average rating.
const (
	pctPrecision  = 1
	meanPrecision = 2
)

// Segment is the TNPS group a rating falls into.
type Segment string

// TNPS segments.
const (
	SegmentPromoter  Segment = "promoter"
	SegmentPassive   Segment = "passive"
	SegmentDetractor Segment = "detractor"
)

// Classify returns the TNPS segment for a valid rating.
func Classify(rating int) Segment {
	switch {
	case rating >= promoterMin:
		return SegmentPromoter
	case rating >= passiveMin:
		return SegmentPassive
	default:
		return SegmentDetractor
	}
}

func tnps(reviews []*model.Review) model.TNPS {
	var promoters, passives, detractors int
	for _, r := range reviews {
		switch Classify(r.Rating) {
		case SegmentPromoter:
			promoters++
		case SegmentPassive:
			passives++
		default:
			detractors++
		}
	}

	responders := len(reviews)
	return model.TNPS{
		Responders: responders,
		Promoters:  model.SegmentStat{Count: promoters, Pct: percent(promoters, responders)},
		Passives:   model.SegmentStat{Count: passives, Pct: percent(passives, responders)},
		Detractors: model.SegmentStat{Count: detractors, Pct: percent(detractors, responders)},
		Score:      percent(promoters-detractors, responders),
	}
}

var hundred = decimal.NewFromInt(100)

// percent returns part/whole*100 rounded to one decimal, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	v := decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole)))
	return toFloat(v.Round(pctPrecision))
}

// mean returns sum/count rounded to places, or 0 when count is 0.
func mean(sum, count int, places int32) float64 {
	if count == 0 {
		return 0
	}
	v := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(count)))
	return toFloat(v.Round(places))
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

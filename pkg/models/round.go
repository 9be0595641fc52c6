package models

import "math"

// Round2 rounds to two decimal places, normalising negative zero.
func Round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

// Rounded returns a copy with numeric fields rounded for the response boundary.
func (p SentimentPoint) Rounded() SentimentPoint {
	p.AvgSentiment = Round2(p.AvgSentiment)
	return p
}

func (m ChannelMetric) Rounded() ChannelMetric {
	m.AvgSentiment = Round2(m.AvgSentiment)
	return m
}

func (k KPI) Rounded() KPI {
	k.AvgSentiment = Round2(k.AvgSentiment)
	return k
}

func (h HeatmapMatrix) Rounded() HeatmapMatrix {
	values := make([][]float64, len(h.Values))
	for i, row := range h.Values {
		values[i] = make([]float64, len(row))
		for j, v := range row {
			values[i][j] = Round2(v)
		}
	}
	h.Values = values
	return h
}

func (s AnalysisSummary) Rounded() AnalysisSummary {
	s.OverallSentiment = Round2(s.OverallSentiment)
	items := make([]MessageAnalysisItem, len(s.Items))
	for i, it := range s.Items {
		it.Sentiment = Round2(it.Sentiment)
		items[i] = it
	}
	s.Items = items
	return s
}

func (in Insight) Rounded() Insight {
	in.Confidence = Round2(in.Confidence)
	if in.MetricContext != nil {
		mc := *in.MetricContext
		if mc.AvgSentimentDelta != nil {
			v := Round2(*mc.AvgSentimentDelta)
			mc.AvgSentimentDelta = &v
		}
		if mc.MessageVolumeDelta != nil {
			v := Round2(*mc.MessageVolumeDelta)
			mc.MessageVolumeDelta = &v
		}
		in.MetricContext = &mc
	}
	return in
}

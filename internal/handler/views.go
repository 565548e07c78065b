package handler

import "glowscan/internal/domain"

type scoreView struct {
	Label   string       `json:"label"`
	Score   domain.Score `json:"score"`
	Display string       `json:"display"`
	Percent float64      `json:"percent"`
}

type resultView struct {
	Result *domain.AnalysisResult `json:"result"`
	Scores []scoreView            `json:"scores"`
}

func newResultView(r *domain.AnalysisResult) resultView {
	labeled := r.Scores()
	scores := make([]scoreView, 0, len(labeled))
	for _, s := range labeled {
		scores = append(scores, scoreView{
			Label:   s.Label,
			Score:   s.Score,
			Display: domain.FormatScore(s.Score),
			Percent: domain.ScorePercent(s.Score),
		})
	}
	return resultView{Result: r, Scores: scores}
}

type routineSection struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

type routineView struct {
	Routine  *domain.Routine  `json:"routine"`
	Sections []routineSection `json:"sections"`
}

// newRoutineView lists the sections that have content, in display order.
func newRoutineView(r *domain.Routine) routineView {
	sections := []routineSection{}
	add := func(title string, lines []string) {
		if len(lines) > 0 {
			sections = append(sections, routineSection{Title: title, Lines: lines})
		}
	}
	add("Skincare", r.SkincareLines())
	add("Haircare", r.Haircare)
	add("Makeup", r.Makeup)
	add("Style", r.Style)
	return routineView{Routine: r, Sections: sections}
}

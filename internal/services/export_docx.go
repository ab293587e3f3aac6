package services

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/fumiama/go-docx"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/statafric/consultation/internal/models"
)

const (
	reportDomainTableRows = 15
	reportStatTableRows   = 30
	reportAnnexRows       = 50
	reportTopCountries    = 10
	chartMaxBars          = 15
)

// BuildPublicationReport renders the prioritization results as a Word
// document: respondent profile, domain and indicator rankings with bar
// charts, a short automatic reading of the results and an annex.
func BuildPublicationReport(profile Profile, byDomain []models.DomainAggregate, byStat []models.StatAggregate, now time.Time) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	title := w.AddParagraph().Justification("center")
	title.AddText("Consultation des parties prenantes : priorisation des statistiques").Size("32").Bold()
	w.AddParagraph().Justification("center").
		AddText(fmt.Sprintf("Rapport généré le %s", now.UTC().Format("2006-01-02"))).Size("20").Color("808080")
	w.AddParagraph()

	heading(w, "1. Profil des répondants")
	w.AddParagraph().AddText(fmt.Sprintf("Nombre de soumissions : %d", profile.N))
	if len(profile.TopCountries) > 0 {
		w.AddParagraph().AddText("Principaux pays :").Bold()
		countTable(w, []string{"Pays", "Soumissions"}, profile.TopCountries)
	}
	if len(profile.ActorTypes) > 0 {
		w.AddParagraph().AddText("Répartition par type d'acteur :").Bold()
		countTable(w, []string{"Type d'acteur", "Soumissions"}, profile.ActorTypes)
	}
	w.AddParagraph()

	heading(w, "2. Priorisation par domaine")
	domainTable(w, byDomain)
	if pic, err := domainChart(byDomain); err == nil && pic != nil {
		if _, err := w.AddParagraph().AddInlineDrawing(pic); err != nil {
			return nil, err
		}
	}
	w.AddParagraph()

	heading(w, "3. Priorisation par statistique")
	statTable(w, byStat, reportStatTableRows)
	if pic, err := statChart(byStat); err == nil && pic != nil {
		if _, err := w.AddParagraph().AddInlineDrawing(pic); err != nil {
			return nil, err
		}
	}
	w.AddParagraph()

	heading(w, "4. Lecture automatique des résultats")
	for _, line := range interpretation(profile, byDomain, byStat) {
		w.AddParagraph().AddText(line)
	}
	w.AddParagraph()

	heading(w, fmt.Sprintf("Annexe : %d premières statistiques", reportAnnexRows))
	statTable(w, byStat, reportAnnexRows)

	buf := &bytes.Buffer{}
	if _, err := w.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func heading(w *docx.Docx, text string) {
	w.AddParagraph().AddText(text).Size("26").Bold()
}

func countTable(w *docx.Docx, header []string, counts []CountCount) {
	t := w.AddTable(len(counts)+1, 2, 0, nil)
	setCell(t, 0, 0, header[0])
	setCell(t, 0, 1, header[1])
	for i, c := range counts {
		setCell(t, i+1, 0, c.Key)
		setCell(t, i+1, 1, fmt.Sprintf("%d", c.N))
	}
}

func domainTable(w *docx.Docx, byDomain []models.DomainAggregate) {
	rows := byDomain
	if len(rows) > reportDomainTableRows {
		rows = rows[:reportDomainTableRows]
	}
	t := w.AddTable(len(rows)+1, 5, 0, nil)
	for j, h := range []string{"Domaine", "Libellé", "Statistiques", "Répondants", "Score moyen"} {
		setCell(t, 0, j, h)
	}
	for i, d := range rows {
		setCell(t, i+1, 0, d.DomainCode)
		setCell(t, i+1, 1, d.DomainLabel)
		setCell(t, i+1, 2, fmt.Sprintf("%d", d.NStats))
		setCell(t, i+1, 3, fmt.Sprintf("%d", d.NSubmissions))
		setCell(t, i+1, 4, fmt.Sprintf("%.2f", d.MeanOverall))
	}
}

func statTable(w *docx.Docx, byStat []models.StatAggregate, limit int) {
	rows := byStat
	if len(rows) > limit {
		rows = rows[:limit]
	}
	t := w.AddTable(len(rows)+1, 6, 0, nil)
	for j, h := range []string{"Domaine", "Statistique", "Libellé", "N", "Demande", "Score moyen"} {
		setCell(t, 0, j, h)
	}
	for i, s := range rows {
		setCell(t, i+1, 0, s.DomainCode)
		setCell(t, i+1, 1, s.StatCode)
		setCell(t, i+1, 2, s.StatLabel)
		setCell(t, i+1, 3, fmt.Sprintf("%d", s.N))
		setCell(t, i+1, 4, fmt.Sprintf("%.2f", s.MeanDemand))
		setCell(t, i+1, 5, fmt.Sprintf("%.2f", s.MeanOverall))
	}
}

func setCell(t *docx.Table, row, col int, text string) {
	t.TableRows[row].TableCells[col].AddParagraph().AddText(text)
}

func domainChart(byDomain []models.DomainAggregate) ([]byte, error) {
	if len(byDomain) == 0 {
		return nil, nil
	}
	bars := make([]chart.Value, 0, len(byDomain))
	for _, d := range byDomain {
		if len(bars) == chartMaxBars {
			break
		}
		bars = append(bars, chart.Value{Value: d.MeanOverall, Label: d.DomainCode})
	}
	return renderBarChart("Score moyen par domaine", bars)
}

func statChart(byStat []models.StatAggregate) ([]byte, error) {
	if len(byStat) == 0 {
		return nil, nil
	}
	ranked := make([]models.StatAggregate, len(byStat))
	copy(ranked, byStat)
	sortStatsByOverall(ranked)
	bars := make([]chart.Value, 0, chartMaxBars)
	for _, s := range ranked {
		if len(bars) == chartMaxBars {
			break
		}
		bars = append(bars, chart.Value{Value: s.MeanOverall, Label: s.StatCode})
	}
	return renderBarChart("Statistiques les mieux notées", bars)
}

func sortStatsByOverall(stats []models.StatAggregate) {
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].MeanOverall > stats[j].MeanOverall
	})
}

func renderBarChart(title string, bars []chart.Value) ([]byte, error) {
	graph := chart.BarChart{
		Title:    title,
		Width:    900,
		Height:   420,
		BarWidth: 36,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 3},
		},
		Bars: bars,
	}
	buf := &bytes.Buffer{}
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func interpretation(profile Profile, byDomain []models.DomainAggregate, byStat []models.StatAggregate) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("%d parties prenantes ont soumis une réponse complète.", profile.N))
	if len(byDomain) > 0 {
		top := byDomain[0]
		lines = append(lines, fmt.Sprintf(
			"Le domaine le mieux noté est %s (%s) avec un score moyen de %.2f sur 3.",
			top.DomainLabel, top.DomainCode, top.MeanOverall))
	}
	if len(byStat) > 0 {
		ranked := make([]models.StatAggregate, len(byStat))
		copy(ranked, byStat)
		sortStatsByOverall(ranked)
		top := ranked[0]
		lines = append(lines, fmt.Sprintf(
			"La statistique prioritaire est %s (%s) avec un score moyen de %.2f, citée par %d répondants.",
			top.StatLabel, top.StatCode, top.MeanOverall, top.N))
	}
	if len(profile.TopCountries) > 0 {
		lines = append(lines, fmt.Sprintf(
			"Le pays le plus représenté est %s avec %d soumissions.",
			profile.TopCountries[0].Key, profile.TopCountries[0].N))
	}
	return lines
}

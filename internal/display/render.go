// Package display renders cards, rounds, tables and simulation reports for
// the terminal.
package display

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/simulator"
	"github.com/lox/pokertable/poker"
)

// FormatCard renders one card, red for hearts and diamonds. Hidden cards
// render as "??".
func FormatCard(c poker.Card) string {
	switch {
	case !c.IsKnown():
		return HiddenCardStyle.Render(c.String())
	case c.IsRed():
		return RedCardStyle.Render(c.String())
	default:
		return BlackCardStyle.Render(c.String())
	}
}

// FormatCards renders cards as "[A♥ K♠]", or "[]" for none.
func FormatCards(cards poker.Cards) string {
	formatted := make([]string, len(cards))
	for i, c := range cards {
		formatted[i] = FormatCard(c)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// FormatLegalActions renders the prompt words for a legal action set, e.g.
// "fold, check, bet 1-970, allin 1000".
func FormatLegalActions(legal []game.LegalAction) string {
	parts := make([]string, 0, len(legal))
	for _, l := range legal {
		word := strings.ToLower(strings.ReplaceAll(l.Kind.String(), "_", ""))
		switch {
		case l.Kind == game.KindFold, l.Kind == game.KindCheck:
			parts = append(parts, word)
		case l.Min == l.Max:
			parts = append(parts, fmt.Sprintf("%s %d", word, l.Min))
		default:
			parts = append(parts, fmt.Sprintf("%s %d-%d", word, l.Min, l.Max))
		}
	}
	return strings.Join(parts, ", ")
}

func playerStatus(p game.PlayerView) string {
	switch {
	case p.Left:
		return "left"
	case p.Folded:
		return "folded"
	case p.AllIn:
		return "all-in"
	case p.LastAction != nil:
		if p.LastAction.Kind == game.KindFold || p.LastAction.Kind == game.KindCheck {
			return strings.ToLower(p.LastAction.Kind.String())
		}
		return fmt.Sprintf("%s %d", strings.ToLower(p.LastAction.Kind.String()), p.LastAction.Amount)
	}
	return ""
}

// RenderRound renders a round as its viewer sees it.
func RenderRound(v game.View) string {
	var b strings.Builder

	header := fmt.Sprintf("Round %s · %s", v.ID, v.Progress)
	if v.Viewer != "" {
		header += " · viewing as " + v.Viewer
	}
	b.WriteString(HeaderStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(HandInfoStyle.Render(fmt.Sprintf("Board: %s  Pot: %d  Bet: %d", FormatCards(v.Community), v.PotSize, v.BetSize)))
	b.WriteString("\n\n")

	for _, p := range v.Players {
		marker := "  "
		if p.ID == v.Acting {
			marker = ActingStyle.Render("▶ ")
		}
		button := " "
		if p.ID == v.Button {
			button = "D"
		}
		line := fmt.Sprintf("%s%s %-12s %s  stack %5d  bet %5d", marker, button, p.Name, FormatCards(p.Cards), p.Stack-p.Bet, p.Bet)
		if status := playerStatus(p); status != "" {
			line += "  " + InfoStyle.Render(status)
		}
		b.WriteString(PlayerInfoStyle.Render(line))
		b.WriteString("\n")
	}

	if len(v.LegalActions) > 0 {
		b.WriteString("\n")
		b.WriteString(ActionsStyle.Render("Actions: " + FormatLegalActions(v.LegalActions)))
		b.WriteString("\n")
	}
	if v.Result != nil {
		b.WriteString("\n")
		b.WriteString(RenderResult(v.Result, names(v.Players)))
	}
	return b.String()
}

func names(players []game.PlayerView) map[string]string {
	out := make(map[string]string, len(players))
	for _, p := range players {
		out[p.ID] = p.Name
	}
	return out
}

// RenderResult renders the settlement: each pot and each player's net.
func RenderResult(res *game.Result, names map[string]string) string {
	name := func(id string) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return id
	}

	var b strings.Builder
	for i, pot := range res.Pots {
		label := "Main pot"
		if i > 0 {
			label = fmt.Sprintf("Side pot %d", i)
		}
		winners := make([]string, len(pot.Winners))
		for j, id := range pot.Winners {
			winners[j] = fmt.Sprintf("%s %d", name(id), pot.Winnings[id])
		}
		b.WriteString(SuccessStyle.Render(fmt.Sprintf("%s %d: %s", label, pot.Total, strings.Join(winners, ", "))))
		b.WriteString("\n")
	}
	for _, pr := range res.Players {
		hand := ""
		if pr.Hand.Category != poker.NoCategory {
			hand = pr.Hand.Category.String()
		}
		style := InfoStyle
		switch {
		case pr.Net > 0:
			style = SuccessStyle
		case pr.Net < 0:
			style = ErrorStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("  %-12s %+6d  %s", name(pr.ID), pr.Net, hand)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTable renders the seats, the current round and the last log lines.
func RenderTable(tv game.TableView, logLines int) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Table %s · %d rounds played", tv.ID, tv.Rounds)))
	b.WriteString("\n")
	for _, s := range tv.Seats {
		line := fmt.Sprintf("  %-12s %6d", s.Name, s.Stack)
		if s.ID == tv.Button {
			line += "  (button)"
		}
		if s.Left {
			line += "  " + InfoStyle.Render("left")
		}
		b.WriteString(PlayerInfoStyle.Render(line))
		b.WriteString("\n")
	}
	if tv.Round != nil {
		b.WriteString("\n")
		b.WriteString(RenderRound(*tv.Round))
	}
	if logLines > 0 && len(tv.Log) > 0 {
		b.WriteString("\n")
		start := max(len(tv.Log)-logLines, 0)
		for _, item := range tv.Log[start:] {
			b.WriteString(InfoStyle.Render(item.Time.Format("15:04:05") + " " + item.Message))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderReport renders a simulation summary.
func RenderReport(rep *simulator.Report) string {
	rows := [][2]string{
		{"Seed", fmt.Sprint(rep.Seed)},
		{"Strategy", rep.Strategy},
		{"Tables", fmt.Sprint(rep.Tables)},
		{"Rounds", fmt.Sprint(rep.Rounds)},
		{"Actions", fmt.Sprint(rep.Actions)},
		{"Rebuys", fmt.Sprint(rep.Rebuys)},
		{"Showdowns", fmt.Sprintf("%d (%.1f%%)", rep.Showdowns, rep.ShowdownRate()*100)},
		{"Fold-outs", fmt.Sprint(rep.FoldOuts)},
		{"Side pots", fmt.Sprint(rep.SidePots)},
		{"Split pots", fmt.Sprint(rep.SplitPots)},
		{"Average pot", fmt.Sprintf("%.1f", rep.AveragePot())},
		{"Largest pot", fmt.Sprint(rep.MaxPot)},
		{"Duration", rep.Duration.String()},
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Simulation report"))
	b.WriteString("\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "  %-12s %s\n", row[0], row[1])
	}

	if len(rep.Winning) > 0 {
		b.WriteString("\n")
		b.WriteString(HandInfoStyle.Render("Winning hands at showdown"))
		b.WriteString("\n")
		categories := make([]poker.Category, 0, len(rep.Winning))
		for c := range rep.Winning {
			categories = append(categories, c)
		}
		slices.Sort(categories)
		slices.Reverse(categories)
		for _, c := range categories {
			fmt.Fprintf(&b, "  %-16s %d\n", c, rep.Winning[c])
		}
	}
	return BoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

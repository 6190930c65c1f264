package matchday

import (
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/tennis-reminder/internal/domain/match"
)

const (
	// MaxChunkRunes is the per-message budget. It stays under the 4096
	// character cap of chat transports.
	MaxChunkRunes = 4000

	Title           = "🎾 *Today’s Matches*"
	NoMatchesNotice = "😴 No matches today in those tournaments."
)

// Render groups matches by league in first-seen order and returns the text
// split into chunks of at most MaxChunkRunes. No matches yields exactly the
// notice.
func Render(matches []match.Match, loc *time.Location) []string {
	if len(matches) == 0 {
		return []string{NoMatchesNotice}
	}
	return Chunk(RenderText(matches, loc), MaxChunkRunes)
}

// RenderText is the unchunked digest.
func RenderText(matches []match.Match, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	order := make([]string, 0)
	grouped := make(map[string][]match.Match)
	for _, m := range matches {
		if _, seen := grouped[m.League]; !seen {
			order = append(order, m.League)
		}
		grouped[m.League] = append(grouped[m.League], m)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(Title)
	_, _ = buf.WriteString("\n\n")
	for _, league := range order {
		_, _ = buf.WriteString("🏆 *")
		_, _ = buf.WriteString(league)
		_, _ = buf.WriteString("*\n")
		for _, m := range grouped[league] {
			_, _ = buf.WriteString(RenderLine(m, loc))
			_ = buf.WriteByte('\n')
		}
		_ = buf.WriteByte('\n')
	}

	return strings.TrimSpace(buf.String())
}

// RenderLine formats one match, indented under its league header.
func RenderLine(m match.Match, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("   ")
	b.WriteString(m.Home)
	if m.IsTwoSided() {
		b.WriteString(" vs ")
		b.WriteString(m.Away)
		if m.HasScore() {
			b.WriteString("  [")
			b.WriteString(m.Score)
			b.WriteString("]")
		}
	}
	if status := DisplayStatus(m.Status); status != "" {
		b.WriteString(" — ")
		b.WriteString(status)
	}
	b.WriteString("  (")
	b.WriteString(m.StartTime.In(loc).Format("3:04 PM"))
	b.WriteString(")")
	return b.String()
}

// DisplayStatus drops "Scheduled" and reads "Final" as "Completed".
func DisplayStatus(status string) string {
	status = strings.ReplaceAll(status, "Scheduled", "")
	status = strings.ReplaceAll(status, "Final", "Completed")
	return strings.TrimSpace(status)
}

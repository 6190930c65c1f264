// Package matchday turns scoreboard documents into the daily match digest.
//
// The pipeline is BuildIndex and Normalize over the raw documents, then
// DetectFavorites, FilterToday and Render. Every step is a pure function of
// its inputs; nothing is shared between runs.
//
// Known limitations kept on purpose:
//   - tournaments are keyed by display name only, so one tournament reported
//     under different names by two sources is treated as two tournaments;
//   - a competition carrying notes becomes a single-sided line built from the
//     first note, even when it also lists two competitors.
package matchday

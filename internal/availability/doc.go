// Package availability computes a faculty member's busy timeline and the
// meeting slots left free in it.
//
// The timeline merges five sources for each calendar day: the weekly
// timetable expanded onto concrete dates, dated class sessions (which take
// precedence over their template), approved meetings, activities and
// holidays. Nothing here is cached; every query and every validation builds
// a fresh timeline from a Source, so the package holds no shared state and
// performs no I/O of its own beyond the Source calls.
package availability

// Package analysis extracts flight figures of merit from result artifacts.
//
//   - [Analyze]: apogee, downward velocity, peak thrust and burn time of one run
//   - [SurveyDir]: every artifact in a campaign results directory
//   - [Summarize], [Accumulator]: mean, min, max and sample deviation
//   - [Histogram]: equal-width bucket counts for plotting
//
// Velocities and forces are converted from the simulator's imperial output
// to SI.
package analysis

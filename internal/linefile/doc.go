// Package linefile reads and writes the plain-text files of the linefit
// command: line configurations, sampled data (optionally compressed) and
// fit reports.
package linefile

// Package water holds the vocabulary shared by every analysis stage: the six
// strip parameters in pad order, the water sources a sample can come from,
// per-source baseline readings, and the safe/critical ranges used to judge a
// reading.
package water

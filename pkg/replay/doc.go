// Package replay feeds synthetic or recorded key presses into a dispatcher.
//
// Type simulates a keyboard-wedge scanner (or a person) typing a string.
// Player re-dispatches the KEY events of a capture file with their recorded
// timing, which reproduces a field problem on a developer machine.
package replay

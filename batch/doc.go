// Package batch turns an ordered list of draw commands into GPU batches.
//
// Consecutive commands that need the same pipeline and, for sprites, the
// same atlas page are merged into one batch. Commands are never reordered:
// a rectangle between two sprites splits them into separate batches, so
// later commands always draw over earlier ones.
//
// Every command emits one quad: four vertices in top-left, top-right,
// bottom-left, bottom-right order and six indices forming two triangles.
package batch

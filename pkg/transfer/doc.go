// Package transfer copies the public, writable state of one component
// instance onto another instance of the same type.
//
// A transfer walks the attribute list of the type (properties first, then
// fields) and, for every writable attribute that is not deprecated, reads
// the value from the source and writes it to the destination. Names listed
// in the RenameTable are redirected to their replacement attribute before
// anything is read:
//
//	material  -> sharedMaterial
//	materials -> sharedMaterials
//	mesh      -> sharedMesh
//
// Failures are isolated per attribute: a getter or setter that returns an
// error or panics is recorded in the Report, logged as a skipped event, and
// the walk continues. Only a type mismatch (or a nil instance) fails the
// whole transfer, and in that case nothing is modified.
package transfer

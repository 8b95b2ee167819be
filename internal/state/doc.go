// Package state records what the last apply did to an output directory.
//
// A BuildRecord is written after every successful apply of a scanned output
// directory. It carries the fingerprint of the node table before and after
// placement, so a second apply over an already placed output is recognized
// and skipped, and the applied move plan, so restore can undo the relocation
// of a table dump without being handed the plan again.
//
// Key concepts:
//   - BuildRecord: The persisted result of one apply
//   - Store: Interface for loading and saving the record
//   - FileStore: JSON file implementation written through fsops.FS
package state

// Package simplesocial provides a reusable library for selecting staged
// content bundles from a directory and publishing them to social platforms,
// with pluggable publish-record and platform backends.
//
// It exposes a single Service interface that orchestrates scanning the
// content directory into logical bundles, assembling one randomly selected
// bundle, fanning it out to every configured platform adapter, and committing
// the basename to the publish record only when every adapter succeeded.
// Publish-record implementations (directory move, append-only log, memory,
// Postgres) and platform adapters (X, Instagram, Threads) are provided under
// subpackages.
//
// Bundle Convention
//
// Files sharing one basename form one post. The basename is the filename with
// its extension stripped, then a trailing "-alt" marker, then a trailing
// "-<digits>" suffix. "sunset.txt", "sunset-alt.txt", "sunset-1.jpg" and
// "sunset-2.jpg" together form the "sunset" bundle: caption, alt text, and a
// two-image carousel in that filename order.
package simplesocial

// Package textnorm normalizes contributor name text for matching.
//
// Normalization is used wherever two name strings must be compared as "the
// same name regardless of spelling niceties": collision detection before a
// rename, and lookup of an existing Name during import. It case-folds,
// strips diacritic marks, and collapses runs of whitespace, so that
// "Björk", "BJORK" and "bjork " all normalize identically.
//
// Sort keys rotate a leading English article to the end ("The Beatles" ->
// "Beatles, The") so alphabetical listings behave the way library catalogs
// expect.
package textnorm

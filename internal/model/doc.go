// Package model defines the expense records produced by the extraction
// pipeline and the closed sets of currencies and categories they use.
package model

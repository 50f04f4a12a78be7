// Package types defines the host store contracts, entity records, query
// shapes, and standard error types for the Silk content-modeling layer.
//
// Records in this package are plain data. Typed models, query builders and
// relationship resolution live in package model.
package types

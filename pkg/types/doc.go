// Package types defines the Store interfaces, entity types, typed settings
// and standard errors for the taskboard storage system.
//
// Boards contain Collections, Collections contain Tasks. Tasks carry a
// task_order that is a contiguous zero-based index within their Collection.
package types

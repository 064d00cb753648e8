package model

// Package model defines domain data structures used across the tool: vendor
// assets, fetch tasks, manifests, and status enums. Structures carry explicit
// state transitions and are shared by the fetch, bundle, and CLI layers.

package platform

// Package platform contains filesystem glue shared by the fetch and bundle
// services: directory creation, existence checks, and size accounting.

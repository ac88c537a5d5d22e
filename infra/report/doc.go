// Package report renders human-readable artifacts for pipeline runs.
package report

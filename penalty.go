// Package penalty keeps a local, searchable copy of the OFAC civil penalties
// and enforcement information pages. It synchronizes per calendar year with
// the live site, links enforcement records to the PDF documents that back
// them, and searches document text with bounded-context excerpts.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, pdftotext/).
package penalty

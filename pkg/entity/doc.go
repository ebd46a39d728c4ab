// Package entity defines the fixed-schema metadata record stored in gnmd files.
//
// A file holds a JSON array of records. Each conformant record carries exactly
// the nine Schema fields, in this order:
//
//	guid, datetime, name, description, mtype, resources, properties, custom, bids
//
// Raw decoded records are handled as Record values; a typed Entity is only
// obtained through FromMap, which enforces the Schema.
package entity

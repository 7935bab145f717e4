// Package config loads the secure store settings: the key alias and master
// key source, the storage driver and the log output.
//
// [GetStructuredConfig] reads environment variables, then the command line,
// then the JSON file named by CONFIG or -c. Each later source overrides the
// non-zero fields of the earlier ones. Defaults are applied to whatever is
// still empty and the result is validated before it is returned.
package config

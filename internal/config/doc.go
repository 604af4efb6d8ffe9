// Package config defines the format-agnostic model of a game script (rules,
// player, puzzle and the programs to play) and the Loader interface that
// concrete formats implement.
//
// The `config.Model` is the single thing the `app` package consumes. The HCL
// and YAML implementations live in the `hcl` and `yamlconfig` packages.
package config

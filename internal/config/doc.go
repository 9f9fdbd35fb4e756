// Package config provides configuration structures and utilities for
// a11yscan. It defines the server, analysis, recommendation and history
// settings, and loads them from defaults, the .a11yscan YAML file and the
// environment, in that order.
package config

// Package io holds configuration input and output: the viper-based config
// manager and the berth.yaml scaffolder.
package io

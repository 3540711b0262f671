// Package cmd contains the berth command tree.
//
// The root command wires a dependency-injection runtime shared by all
// subcommands. Each subcommand loads the distribution config, resolves its
// collaborators from the runtime and runs one stage of the installation
// test flow. The run command chains every stage end to end.
package cmd

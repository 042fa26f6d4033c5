/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/gmaffy/cojo-whisperer/cmd"

func main() {
	cmd.Execute()
}

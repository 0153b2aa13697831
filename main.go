/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/Saterlix/Nova/cmd"

func main() {
	cmd.Execute()
}

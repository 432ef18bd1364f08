package main

import "github.com/airules/airules/cmd/airules"

func main() { airules.Execute() }

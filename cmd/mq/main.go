package main

import "monkquest/cmd/mq/root"

func main() {
	root.Execute()
}

package main

import "github.com/gogotex/gogotex/backend/user-sync/cmd"

func main() {
	cmd.Execute()
}

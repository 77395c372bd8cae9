/*
Copyright © 2026 GuoCheng
*/
package main

import "github.com/GuoCheng12/aie/cmd"

func main() {
	cmd.Execute()
}

// mealmood 命令行客户端
package main

import "mealmood-server/internal/cli/command"

func main() {
	command.Execute()
}

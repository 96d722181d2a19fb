// botline — запуск ботов из командной строки.
//
// Использование:
//
//	botline [--json] <command> [flags]
//
// Команды:
//
//	run      Один проход бота на in-memory pipeline
//	serve    Бот на RabbitMQ до сигнала завершения
//	modules  Встроенные модули
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shaiso/botline/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

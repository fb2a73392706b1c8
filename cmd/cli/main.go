package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"uav-platform/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}
	cmd := os.Args[1]
	args := os.Args[2:]
	switch cmd {
	case "version":
		fmt.Println("uav-platform cli 0.1.0")
	case "health":
		runHealth()
	case "config":
		runConfig()
	case "server":
		if len(args) > 0 && args[0] == "start" {
			runServerStart()
		} else {
			fmt.Fprintf(os.Stderr, "Usage: uavctl server start\n")
			os.Exit(1)
		}
	case "run":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: uavctl run \"<command>\"\n")
			os.Exit(1)
		}
		runOnce(strings.Join(args, " "))
	case "chat":
		runChat(os.Stdin, os.Stdout)
	case "history":
		limit := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				fmt.Fprintf(os.Stderr, "Usage: uavctl history [limit]\n")
				os.Exit(1)
			}
			limit = n
		}
		runHistory(limit)
	case "summary":
		runSummary()
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: uavctl <command> [args]")
	fmt.Println("  version          - 显示版本")
	fmt.Println("  health           - API 健康检查")
	fmt.Println("  config           - 显示配置概要")
	fmt.Println("  server start     - 启动 API 服务（go run ./cmd/api）")
	fmt.Println("  run \"<command>\"  - 执行一条自然语言指令并打印结果")
	fmt.Println("  chat             - 交互式指令会话（exit/quit 退出）")
	fmt.Println("  history [limit]  - 显示最近的指令历史")
	fmt.Println("  summary          - 显示当前会话总结")
}

func runHealth() {
	out, err := checkHealth()
	if err != nil {
		fmt.Fprintf(os.Stderr, "健康检查失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}

func runConfig() {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if cfg != nil {
		fmt.Printf("api.port=%d\n", cfg.API.Port)
		fmt.Printf("api.host=%s\n", cfg.API.Host)
		fmt.Printf("uav.base_url=%s\n", cfg.UAV.BaseURL)
		fmt.Printf("history.type=%s\n", cfg.History.Type)
	}
}

func runServerStart() {
	c := exec.Command("go", "run", "./cmd/api")
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Dir = "."
	if err := c.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "server start: %v\n", err)
		os.Exit(1)
	}
}

func runOnce(command string) {
	result, err := postCommand(command)
	if err != nil {
		fmt.Fprintf(os.Stderr, "执行失败: %v\n", err)
		os.Exit(1)
	}
	printResult(os.Stdout, result)
	if ok, _ := result["success"].(bool); !ok {
		os.Exit(1)
	}
}

func runChat(in io.Reader, out io.Writer) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		msg := strings.TrimSpace(line)
		if msg == "" {
			continue
		}
		if msg == "exit" || msg == "quit" {
			break
		}
		result, err := postCommand(msg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "执行失败: %v\n", err)
			continue
		}
		printResult(out, result)
	}
}

func runHistory(limit int) {
	records, err := listHistory(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取历史失败: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("[]")
		return
	}
	fmt.Println(prettyJSON(records))
}

func runSummary() {
	out, err := getSummary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取会话总结失败: %v\n", err)
		os.Exit(1)
	}
	if text, ok := out["summary"].(string); ok && text != "" {
		fmt.Println(text)
		return
	}
	fmt.Println(prettyJSON(out))
}

// printResult 人类可读地输出流水线结果：总结 + 逐步明细
func printResult(w io.Writer, result map[string]interface{}) {
	if output, ok := result["output"].(string); ok && output != "" {
		fmt.Fprintln(w, output)
	}
	execution, ok := result["execution"].(map[string]interface{})
	if !ok {
		return
	}
	results, ok := execution["execution_results"].([]interface{})
	if !ok {
		return
	}
	for _, raw := range results {
		r, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		stepID, _ := r["step_id"].(string)
		if success, _ := r["success"].(bool); success {
			fmt.Fprintf(w, "  [ok]   %s\n", stepID)
		} else {
			errMsg, _ := r["error"].(string)
			fmt.Fprintf(w, "  [fail] %s: %s\n", stepID, errMsg)
		}
	}
}

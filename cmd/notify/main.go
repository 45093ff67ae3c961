package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"NotifyReader/internal/config"
	"NotifyReader/internal/service/events"
)

// Утилита отправляет тестовое уведомление в работающий webhook-источник.
// Адрес и токен берутся из конфигурации (.env/ENV), флаги задают содержимое.
func main() {
	var (
		title   string
		text    string
		pkg     string
		key     string
		remove  bool
		noTitle bool
	)
	fs := flag.NewFlagSet("notify", flag.ExitOnError)
	fs.StringVar(&title, "title", "Test", "заголовок уведомления")
	fs.StringVar(&text, "text", "Hello from notify", "текст уведомления")
	fs.StringVar(&pkg, "package", "notify.cli", "идентификатор приложения-источника")
	fs.StringVar(&key, "key", "", "ключ уведомления (пусто — назначит сервер)")
	fs.BoolVar(&remove, "remove", false, "снять уведомление с ключом -key вместо публикации")
	fs.BoolVar(&noTitle, "no-title", false, "не передавать заголовок")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Println("ошибка конфигурации:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeoutCause(context.Background(), 10*time.Second, errors.New("notify request timeout"))
	defer cancel()

	base := "http://" + cfg.Webhook.BindAddr + "/notifications"
	var req *http.Request
	if remove {
		if strings.TrimSpace(key) == "" {
			fmt.Println("для -remove нужен -key")
			os.Exit(2)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodDelete, base+"/"+key, nil)
	} else {
		p := events.Payload{Key: key, PackageID: pkg, Text: &text, PostTime: time.Now().UnixMilli()}
		if !noTitle {
			p.Title = &title
		}
		body, mErr := json.Marshal(p)
		if mErr != nil {
			fmt.Println("не удалось сериализовать уведомление:", mErr)
			os.Exit(1)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, base, bytes.NewReader(body))
	}
	if err != nil {
		fmt.Println("не удалось создать запрос:", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if t := strings.TrimSpace(cfg.Webhook.AuthToken); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("ошибка при выполнении запроса:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	fmt.Printf("status=%d %s\n", resp.StatusCode, strings.TrimSpace(string(b)))
	if resp.StatusCode >= 300 {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"picstorm-server/internal/cache"
	"picstorm-server/internal/config"
	"picstorm-server/internal/db"
	"picstorm-server/internal/di"
	"picstorm-server/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	applicationName    = "PicStorm Server"
	applicationVersion = "1.0.0"
)

func main() {
	configDir := flag.String("config-dir", "config", "配置文件所在目录")
	exportRoutes := flag.Bool("export", false, "导出路由到 routes.json 并退出")
	flag.Parse()

	config.InitConfig(*configDir)
	gormDB := db.InitDB()

	storagePath := config.Get().Storage.Path
	if err := checkSecurePath(storagePath); err != nil {
		logger.Fatal("❌ 存储目录配置不安全", logger.Fields{"path": storagePath, "error": err.Error()})
	}

	redisClient := cache.NewRedisClient(config.Get().Redis)
	defer func() {
		if err := cache.CloseRedisClient(redisClient); err != nil {
			logger.Warn("⚠️ 关闭 Redis 失败", logger.Fields{"error": err.Error()})
		}
	}()

	app, err := di.InitializeApplication(gormDB, redisClient)
	if err != nil {
		logger.Fatal("❌ 初始化应用失败", logger.Fields{"error": err.Error()})
	}

	gin.SetMode(config.Get().Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	applyTrustedProxies(r, config.Get().Server.TrustedProxies)
	app.Router.Init(r)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API not found"})
	})

	if *exportRoutes {
		if err := exportAPI(r, "routes.json"); err != nil {
			logger.Fatal("❌ 导出路由失败", logger.Fields{"error": err.Error()})
		}
		return
	}

	printWelcomeMessage()

	srv := &http.Server{
		Addr:              ":" + config.Get().Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🚀 服务启动成功", logger.Fields{"port": config.Get().Server.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ 服务启动失败", logger.Fields{"error": err.Error()})
		}
	}()

	// 等待中断信号，5 秒内完成关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 正在关闭服务...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("❌ 服务强制关闭", logger.Fields{"error": err.Error()})
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("✅ 服务已退出", nil)
}

func printWelcomeMessage() {
	fmt.Println()
	fmt.Println(" ┌───────────────────────────────────────────────────────┐")
	fmt.Printf(" │   🚀  %s\n", applicationName)
	fmt.Println(" ├───────────────────────────────────────────────────────┤")
	fmt.Printf(" │   📦  版本     : %s\n", applicationVersion)
	fmt.Printf(" │   🗄️  数据库   : %s\n", config.Get().Database.Type)
	fmt.Printf(" │   🔥  服务端口 : %s\n", config.Get().Server.Port)
	fmt.Println(" └───────────────────────────────────────────────────────┘")
	fmt.Println()
}

func splitTrustedProxyList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// applyTrustedProxies 留空时不信任任何代理，列表无效时同样回退为不信任
func applyTrustedProxies(r *gin.Engine, raw string) {
	proxies := splitTrustedProxyList(raw)
	if len(proxies) == 0 {
		_ = r.SetTrustedProxies(nil)
		return
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		logger.Warn("⚠️ trusted_proxies 配置无效，已禁用代理信任", logger.Fields{"error": err.Error()})
		_ = r.SetTrustedProxies(nil)
	}
}

func exportAPI(r *gin.Engine, filename string) error {
	type RouteInfo struct {
		Method  string `json:"method"`
		Path    string `json:"path"`
		Handler string `json:"handler"`
	}

	routes := r.Routes()
	exportList := make([]RouteInfo, 0, len(routes))
	for _, route := range routes {
		exportList = append(exportList, RouteInfo{
			Method:  route.Method,
			Path:    route.Path,
			Handler: route.Handler,
		})
	}

	data, err := json.MarshalIndent(exportList, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return err
	}
	logger.Info("✅ 路由已成功导出", logger.Fields{"file": filename})
	return nil
}

// checkSecurePath 存储目录不能是工作目录本身，位于工作目录内时必须在允许的子目录下
func checkSecurePath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("路径解析失败: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("无法获取当前工作目录: %w", err)
	}
	if absPath == cwd {
		return fmt.Errorf("存储目录 '%s' 不能设置为工作目录", path)
	}

	rel, err := filepath.Rel(cwd, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil
	}
	allowedDirs := []string{"uploads", "data", "storage", "tmp"}
	firstComponent := strings.Split(filepath.ToSlash(rel), "/")[0]
	for _, allowed := range allowedDirs {
		if strings.EqualFold(firstComponent, allowed) {
			return nil
		}
	}
	return fmt.Errorf("存储目录 '%s' 必须位于工作目录下的 %v 之一", path, allowedDirs)
}

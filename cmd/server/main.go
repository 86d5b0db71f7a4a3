// Package main 是应用程序的入口点。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"scholar-agent-go/internal/config"
	"scholar-agent-go/internal/handler"
	"scholar-agent-go/internal/service"
	"scholar-agent-go/pkg/llm"
	"scholar-agent-go/pkg/log"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	var cfgPath string
	root := &cobra.Command{
		Use:           "scholar-agent",
		Short:         "Academic writing assistant API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfgPath)
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "./configs/config.yaml", "config file")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string) error {
	// 1. 初始化配置，缺少 API key 时拒绝启动
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化模型客户端
	llmClient, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Generation: generationParams(cfg.LLM.Generation),
	})
	if err != nil {
		return fmt.Errorf("初始化 Gemini 客户端失败: %w", err)
	}

	// 4. 初始化 Service (依赖注入)
	attachmentService := service.NewAttachmentService(cfg.Attachments)
	agentService := service.NewAgentService(llmClient, attachmentService, service.NewPrompts(cfg.Prompt), service.AgentOptions{
		Model:           cfg.LLM.Model,
		RiskModel:       cfg.LLM.RiskModel,
		Timeout:         cfg.LLM.Timeout,
		HistoryLimit:    cfg.Agent.HistoryLimit,
		APAAsSuggestion: cfg.Agent.APAAsSuggestion,
	})

	// 5. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: handler.NewRouter(agentService),
	}

	// 6. 启动 HTTP 服务器并实现优雅停机
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务监听失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("接收到停机信号，正在关闭服务...")
		// 留出时间让在途的模型调用写完结果
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout+5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error("服务异常退出", err)
		return err
	}
	log.Info("服务已优雅关闭")
	return nil
}

// generationParams 只传递显式配置的字段，零值交给模型默认值。
func generationParams(cfg config.LLMGenerationConfig) *llm.GenerationParams {
	var p llm.GenerationParams
	set := false
	if cfg.Temperature != 0 {
		p.Temperature = &cfg.Temperature
		set = true
	}
	if cfg.TopP != 0 {
		p.TopP = &cfg.TopP
		set = true
	}
	if cfg.MaxTokens != 0 {
		p.MaxTokens = &cfg.MaxTokens
		set = true
	}
	if !set {
		return nil
	}
	return &p
}

package main

import (
	"context"
	"coursemart_backend/internal/config"
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/service"
	"coursemart_backend/pkg/database"
	"coursemart_backend/pkg/logger"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var configPath string

// env 命令共享的数据库与缓存连接
type env struct {
	cfg *config.Config
	db  *gorm.DB
	rdb *redis.Client
}

func open() (*env, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, err
	}
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, cache will not be invalidated", zap.Error(err))
		rdb = nil
	}
	return &env{cfg: cfg, db: db, rdb: rdb}, nil
}

func (e *env) discounts() *service.DiscountService {
	return service.NewDiscountService(repository.NewDiscountRepository(e.db), repository.NewCourseRepository(e.db), e.rdb)
}

func main() {
	root := &cobra.Command{
		Use:          "coursectl",
		Short:        "CourseMart 运维命令",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs", "配置文件目录")

	root.AddCommand(
		migrateCmd(),
		syncDiscountsCmd(),
		addGlobalDiscountCmd(),
		addSampleDiscountsCmd(),
		initSiteSettingsCmd(),
		createAdminCmd(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "自动迁移数据表并写入默认设置",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			return database.Migrate(e.db)
		},
	}
}

func syncDiscountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-discounts",
		Short: "按时间窗口刷新课程与全站折扣的生效标记",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			result, err := e.discounts().Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d courses and %d global discounts\n",
				result.CoursesUpdated, result.GlobalUpdated)
			return nil
		},
	}
}

func addGlobalDiscountCmd() *cobra.Command {
	var days, percentage int
	cmd := &cobra.Command{
		Use:   "add-global-discount",
		Short: "创建示例全站折扣，已有生效中的折扣时跳过",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			d, created, err := e.discounts().AddSampleGlobalDiscount(cmd.Context(), days, percentage)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "Active global discount already exists: %s (%d%%)\n", d.Title, d.DiscountPercentage)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created global discount: %s (%d%% until %s)\n",
				d.Title, d.DiscountPercentage, d.EndDate.Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "持续天数")
	cmd.Flags().IntVar(&percentage, "percentage", 30, "折扣百分比")
	return cmd
}

func addSampleDiscountsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "add-sample-discounts",
		Short: "给最新三门付费课程设置八折",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			courses, err := e.discounts().AddSampleCourseDiscounts(days)
			if err != nil {
				return err
			}
			for _, c := range courses {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", c.Title, c.Price.StringFixed(2), c.DiscountPrice.Decimal.StringFixed(2))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Discounted %d courses\n", len(courses))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "持续天数")
	return cmd
}

func initSiteSettingsCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "init-site-settings",
		Short: "写入默认站点设置与支付设置",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			if reset {
				site := service.NewSiteService(repository.NewSettingsRepository(e.db), repository.NewBannerRepository(e.db))
				if _, err := site.ResetSettings(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Site settings reset to defaults")
				return nil
			}
			if err := database.Seed(e.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Default settings ensured")
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "覆盖已有站点设置")
	return cmd
}

func createAdminCmd() *cobra.Command {
	var in service.RegisterInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "创建管理员账号",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Email == "" || len(in.Password) < 8 {
				return fmt.Errorf("email and a password of at least 8 characters are required")
			}
			e, err := open()
			if err != nil {
				return err
			}
			auth := service.NewAuthService(repository.NewUserRepository(e.db), e.cfg)
			user, err := auth.CreateUser(&in, model.Admin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "Administrator", "姓名")
	cmd.Flags().StringVar(&in.Email, "email", "", "邮箱")
	cmd.Flags().StringVar(&in.Password, "password", "", "密码")
	return cmd
}

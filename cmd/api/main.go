package main

import (
	"fmt"
	"net/http"

	"github.com/agrilabs/agripay-backend-go/internal/config"
	appHTTP "github.com/agrilabs/agripay-backend-go/internal/handler/http"
	"github.com/agrilabs/agripay-backend-go/internal/pkg/database"
	"github.com/agrilabs/agripay-backend-go/internal/pkg/jwt"
	"github.com/agrilabs/agripay-backend-go/internal/repository/postgresql"
	deductionService "github.com/agrilabs/agripay-backend-go/internal/service/deduction"
	paycalcService "github.com/agrilabs/agripay-backend-go/internal/service/paycalc"
	workorderService "github.com/agrilabs/agripay-backend-go/internal/service/workorder"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	txManager := postgresql.NewTxManager(db)
	workerRepo := postgresql.NewWorkerRepository(db)
	workOrderRepo := postgresql.NewWorkOrderRepository(db)
	deductionRepo := postgresql.NewDeductionRepository(db)
	payCalculationRepo := postgresql.NewPayCalculationRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	calculator := deductionService.NewCalculator(deductionRepo)
	ruleService := deductionService.NewService(txManager, deductionRepo)
	payCalculationSvc := paycalcService.NewService(txManager, payCalculationRepo, workOrderRepo, workerRepo, calculator)
	workOrderSvc := workorderService.NewService(txManager, workOrderRepo, workerRepo, payCalculationSvc)

	workOrderHandler := appHTTP.NewWorkOrderHandler(workOrderSvc, JWTService)
	payCalculationHandler := appHTTP.NewPayCalculationHandler(payCalculationSvc)
	deductionHandler := appHTTP.NewDeductionHandler(ruleService)

	router := appHTTP.NewRouter(
		JWTService,
		workOrderHandler,
		payCalculationHandler,
		deductionHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}

package mock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "mise/internal/log"
	"mise/models"
)

// New returns an in-memory sqlite database seeded with a small restaurant:
// a staff account, a stocked pantry, two menu items with recipes, and a few
// recorded sales. Used for local runs and as a demo fixture.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:mise-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Ingredient{},
		&models.MenuItem{},
		&models.RecipeRequirement{},
		&models.Purchase{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("brigade1"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:         "Sam Kitchen",
		Email:        "chef@mise.app",
		PasswordHash: string(password),
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	tomato := models.Ingredient{
		Name:         "Tomato",
		PricePerUnit: decimal.RequireFromString("0.50"),
		Quantity:     decimal.NewFromInt(1000),
	}
	cheese := models.Ingredient{
		Name:         "Cheese",
		PricePerUnit: decimal.RequireFromString("1.50"),
		Quantity:     decimal.NewFromInt(50),
	}
	patty := models.Ingredient{
		Name:         "Beef Patty",
		PricePerUnit: decimal.RequireFromString("2.25"),
		Quantity:     decimal.NewFromInt(80),
	}
	lettuce := models.Ingredient{
		Name:         "Lettuce",
		PricePerUnit: decimal.RequireFromString("0.30"),
		Quantity:     decimal.NewFromInt(200),
	}

	for _, ingredient := range []*models.Ingredient{&tomato, &cheese, &patty, &lettuce} {
		if err := db.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}

	burger := models.MenuItem{
		Name:  "Burger",
		Price: decimal.RequireFromString("5.00"),
	}
	salad := models.MenuItem{
		Name:  "Garden Salad",
		Price: decimal.RequireFromString("4.50"),
	}

	if err := db.WithContext(ctx).Create(&burger).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(&salad).Error; err != nil {
		return err
	}

	requirements := []models.RecipeRequirement{
		{MenuItemID: burger.ID, IngredientID: tomato.ID, Quantity: decimal.NewFromInt(2)},
		{MenuItemID: burger.ID, IngredientID: cheese.ID, Quantity: decimal.NewFromInt(1)},
		{MenuItemID: burger.ID, IngredientID: patty.ID, Quantity: decimal.NewFromInt(1)},
		{MenuItemID: salad.ID, IngredientID: tomato.ID, Quantity: decimal.NewFromInt(3)},
		{MenuItemID: salad.ID, IngredientID: lettuce.ID, Quantity: decimal.NewFromInt(2)},
	}

	for _, requirement := range requirements {
		requirementCopy := requirement
		if err := db.WithContext(ctx).Create(&requirementCopy).Error; err != nil {
			return err
		}
	}

	purchases := []models.Purchase{
		{MenuItemID: burger.ID},
		{MenuItemID: burger.ID},
		{MenuItemID: salad.ID},
	}

	for _, purchase := range purchases {
		purchaseCopy := purchase
		if err := db.WithContext(ctx).Create(&purchaseCopy).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}

package repository

import (
	catalogRepo "jamb/database/repository/catalog"
	materialsRepo "jamb/database/repository/materials"
	orderRepo "jamb/database/repository/order"
	userRepo "jamb/database/repository/user"
)

// Re-export the CatalogRepository interface and constructor.
type CatalogRepository = catalogRepo.CatalogRepository

var NewMongoCatalogRepo = catalogRepo.NewMongoCatalogRepo

// Re-export the MaterialsRepository interface and constructor.
type MaterialsRepository = materialsRepo.MaterialsRepository

var NewPostgresMaterialsRepo = materialsRepo.NewPostgresMaterialsRepo

// Re-export the OrderRepository interface and constructor.
type OrderRepository = orderRepo.OrderRepository

var NewMongoOrderRepo = orderRepo.NewMongoOrderRepo

// Re-export the UserRepository interface and constructor.
type UserRepository = userRepo.UserRepository

var NewMongoUserRepository = userRepo.NewMongoUserRepo

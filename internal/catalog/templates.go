package catalog

import "checklist-service/internal/model"

// Master checklist. Order is the display order inside each phase.
var templates = []ItemTemplate{
	// Documentación
	{Phase: "documentation", Title: "Brief del proyecto aprobado", Description: "Alcance, objetivos y entregables firmados por el cliente.", Weight: model.WeightHigh, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 1},
	{Phase: "documentation", Title: "Arquitectura de información definida", Description: "Mapa del sitio y jerarquía de contenidos.", Weight: model.WeightMedium, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 2},
	{Phase: "documentation", Title: "Textos e imágenes entregados por el cliente", Description: "", Weight: model.WeightMedium, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 3},
	{Phase: "documentation", Title: "Políticas legales y aviso de cookies", Description: "Aviso legal, privacidad y consentimiento de cookies.", Weight: model.WeightHigh, Technologies: []string{TagAll}, SiteTypes: []string{"ecommerce", "corporate", "webapp"}, Order: 4},
	{Phase: "documentation", Title: "Condiciones de venta y devoluciones", Description: "", Weight: model.WeightCritical, Technologies: []string{TagAll}, SiteTypes: []string{"ecommerce"}, Order: 5},

	// Diseño
	{Phase: "design", Title: "Diseño responsive validado en móvil y tablet", Description: "", Weight: model.WeightHigh, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 1},
	{Phase: "design", Title: "CTA claros y destacados", Description: "Llamadas a la acción visibles sin scroll y con contraste suficiente.", Weight: model.WeightCritical, Technologies: []string{TagAll}, SiteTypes: []string{"landing", "ecommerce"}, Order: 2},
	{Phase: "design", Title: "Guía de estilos aplicada", Description: "Tipografías, colores y espaciados según la guía.", Weight: model.WeightMedium, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 3},
	{Phase: "design", Title: "Favicon e imagen para compartir en redes", Description: "", Weight: model.WeightLow, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 4},
	{Phase: "design", Title: "Formulario de captación optimizado", Description: "Campos mínimos y mensaje de éxito configurado.", Weight: model.WeightHigh, Technologies: []string{TagAll}, SiteTypes: []string{"landing"}, Order: 5},

	// Desarrollo
	{Phase: "development", Title: "Plantilla hija configurada", Description: "Cambios de tema aislados en un child theme.", Weight: model.WeightMedium, Technologies: []string{"wordpress"}, SiteTypes: []string{TagAll}, Order: 1},
	{Phase: "development", Title: "Plugins actualizados y sin abandonar", Description: "Sin plugins sin mantenimiento en el último año.", Weight: model.WeightHigh, Technologies: []string{"wordpress"}, SiteTypes: []string{TagAll}, Order: 2},
	{Phase: "development", Title: "Build de producción sin warnings", Description: "", Weight: model.WeightMedium, Technologies: []string{"react", "vue"}, SiteTypes: []string{TagAll}, Order: 3},
	{Phase: "development", Title: "Migraciones de base de datos versionadas", Description: "", Weight: model.WeightHigh, Technologies: []string{"laravel"}, SiteTypes: []string{TagAll}, Order: 4},
	{Phase: "development", Title: "Enlaces internos sin errores 404", Description: "", Weight: model.WeightHigh, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 5},
	{Phase: "development", Title: "Pasarela de pago en modo producción", Description: "Pagos de prueba realizados y reembolsados.", Weight: model.WeightCritical, Technologies: []string{TagAll}, SiteTypes: []string{"ecommerce"}, Order: 6},
	{Phase: "development", Title: "Carrito y checkout probados de extremo a extremo", Description: "", Weight: model.WeightCritical, Technologies: []string{TagAll}, SiteTypes: []string{"ecommerce"}, Order: 7},

	// Rendimiento
	{Phase: "performance", Title: "Imágenes comprimidas y en formato moderno", Description: "WebP/AVIF con tamaños adaptados.", Weight: model.WeightMedium, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 1},
	{Phase: "performance", Title: "Caché de página activada", Description: "", Weight: model.WeightMedium, Technologies: []string{"wordpress", "drupal"}, SiteTypes: []string{TagAll}, Order: 2},
	{Phase: "performance", Title: "Core Web Vitals en verde", Description: "LCP, CLS e INP dentro de los umbrales recomendados.", Weight: model.WeightHigh, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 3},
	{Phase: "performance", Title: "Tiempo de respuesta del servidor < 600ms", Description: "", Weight: model.WeightHigh, Technologies: []string{TagAll}, SiteTypes: []string{"ecommerce", "webapp"}, Order: 4},

	// Seguridad
	{Phase: "security", Title: "Certificado SSL activo y forzado", Description: "Redirección completa a https.", Weight: model.WeightCritical, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 1},
	{Phase: "security", Title: "Accesos de administración restringidos", Description: "Usuarios de demo eliminados y contraseñas fuertes.", Weight: model.WeightHigh, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 2},
	{Phase: "security", Title: "Copias de seguridad automáticas configuradas", Description: "", Weight: model.WeightHigh, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 3},
	{Phase: "security", Title: "Cumplimiento RGPD en formularios", Description: "Checkbox de consentimiento y doble opt-in donde aplique.", Weight: model.WeightCritical, Technologies: []string{TagAll}, SiteTypes: []string{"ecommerce", "corporate", "landing"}, Order: 4},
	{Phase: "security", Title: "Claves de API fuera del repositorio", Description: "", Weight: model.WeightHigh, Technologies: []string{"react", "vue", "laravel"}, SiteTypes: []string{TagAll}, Order: 5},

	// QA
	{Phase: "qa", Title: "Pruebas cross-browser completadas", Description: "Chrome, Firefox, Safari y Edge.", Weight: model.WeightHigh, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 1},
	{Phase: "qa", Title: "Formularios probados con datos reales", Description: "Envío, validaciones y correos de notificación.", Weight: model.WeightHigh, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 2},
	{Phase: "qa", Title: "Ortografía y contenido revisados", Description: "", Weight: model.WeightMedium, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 3},
	{Phase: "qa", Title: "Flujo de compra validado con pedido real", Description: "", Weight: model.WeightCritical, Technologies: []string{TagAll}, SiteTypes: []string{"ecommerce"}, Order: 4},
	{Phase: "qa", Title: "Accesibilidad básica verificada", Description: "Contraste, alt en imágenes y navegación por teclado.", Weight: model.WeightMedium, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 5},

	// Despliegue
	{Phase: "deployment", Title: "Dominio y DNS apuntando a producción", Description: "", Weight: model.WeightCritical, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 1},
	{Phase: "deployment", Title: "Redirecciones 301 del sitio anterior", Description: "", Weight: model.WeightHigh, Technologies: []string{TagAll}, SiteTypes: []string{"corporate", "ecommerce", "blog"}, Order: 2},
	{Phase: "deployment", Title: "Analítica y objetivos configurados", Description: "Eventos de conversión verificados en tiempo real.", Weight: model.WeightMedium, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 3},
	{Phase: "deployment", Title: "Sitemap enviado a buscadores", Description: "", Weight: model.WeightLow, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 4},
	{Phase: "deployment", Title: "Indexación desbloqueada", Description: "Sin noindex global ni robots.txt bloqueante.", Weight: model.WeightCritical, Technologies: []string{TagAll}, SiteTypes: []string{TagAll}, Order: 5},
}
